package segment

import (
	"strconv"
	"strings"
)

// basicDateTime is a colon-free basic date-time layout. Interval bounds are
// rendered in UTC so the trailing Z is literal and the token never contains
// a colon, which is illegal in wasb-style storage keys.
const basicDateTime = "20060102T150405.000Z"

// StorageDir derives the storage directory for a segment identity:
//
//	<dataSource>/<start>_<end>/<version>/<partitionNum>
//
// The result is deterministic: republishing the same identity always yields
// the same path, and identities differing in any field yield different
// paths. Any residual colon is replaced with an underscore even though the
// date-time encoding is already colon-free, so the path-safety invariant
// holds regardless of upstream format changes. No other validation is done;
// callers supply identities whose string fields are storage-key-safe.
func StorageDir(id Identity) string {
	rangeToken := id.Interval.Start.UTC().Format(basicDateTime) +
		"_" + id.Interval.End.UTC().Format(basicDateTime)

	dir := strings.Join([]string{
		id.DataSource,
		rangeToken,
		id.Version,
		strconv.Itoa(id.PartitionNum),
	}, "/")

	return strings.ReplaceAll(dir, ":", "_")
}
