package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"segpub/internal/publisher"
)

// NewHadoopPathCommand returns the "hadoop-path" command, printing the
// filesystem-style base URI external consumers mount the container under.
func NewHadoopPathCommand() *cobra.Command {
	var (
		container string
		account   string
		protocol  string
	)

	cmd := &cobra.Command{
		Use:   "hadoop-path",
		Short: "Print the Hadoop base URI for a container",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if container == "" || account == "" {
				return fmt.Errorf("--container and --account are required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), publisher.HadoopBasePath(protocol, container, account))
			return nil
		},
	}

	cmd.Flags().StringVar(&container, "container", "", "container or bucket name")
	cmd.Flags().StringVar(&account, "account", "", "storage account name")
	cmd.Flags().StringVar(&protocol, "protocol", publisher.DefaultProtocol, "URI scheme")

	return cmd
}
