package catalog

import (
	"github.com/alexchny/connection-jobs/internal/domain"
)

// ForReset declares every stream full_refresh/overwrite on a copy of c. The
// streams whose data is cleared travel separately in the reset payload, so no
// stream is filtered out here.
func ForReset(c domain.ConfiguredCatalog) domain.ConfiguredCatalog {
	out := c.Clone()
	for i := range out.Streams {
		out.Streams[i].SyncMode = domain.SyncModeFullRefresh
		out.Streams[i].DestinationSyncMode = domain.DestinationSyncModeOverwrite
	}
	return out
}
