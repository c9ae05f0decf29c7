// Package syncstate decides which side of the dual store is authoritative
// for each collection, given the last-saved timestamp of the local cache and
// the last-updated timestamp of the remote store.
package syncstate

// Reason classifies why a collection does or does not need a pull, so callers
// can render distinct messaging without re-deriving the comparison.
type Reason string

const (
	ReasonBothEmpty    Reason = "both_empty"
	ReasonLocalEmpty   Reason = "local_empty"
	ReasonRemoteEmpty  Reason = "remote_empty"
	ReasonOneSideNewer Reason = "one_side_newer"
	ReasonNoSyncNeeded Reason = "no_sync_needed"
)

// Collection is the verdict for a single collection
type Collection struct {
	NeedsPull bool
	Reason    Reason
}

// Decision is the verdict for both collections. NeedsSync is the logical OR
// of the per-collection flags; callers acting on it must still re-check each
// collection's flag before overwriting anything.
type Decision struct {
	Songs     Collection
	Lists     Collection
	NeedsSync bool
}

// Compare evaluates the two collections independently (they are persisted as
// separate remote files). Timestamps are ISO-8601 strings compared
// lexicographically; no clock-skew tolerance is applied. An empty string
// means "no snapshot on that side".
func Compare(localSongs, localLists, remoteSongs, remoteLists string) Decision {
	songs := compareOne(localSongs, remoteSongs)
	lists := compareOne(localLists, remoteLists)
	return Decision{
		Songs:     songs,
		Lists:     lists,
		NeedsSync: songs.NeedsPull || lists.NeedsPull,
	}
}

// compareOne decides one collection: pull when the remote snapshot exists and
// the local one is absent or strictly older.
func compareOne(local, remote string) Collection {
	switch {
	case local == "" && remote == "":
		return Collection{Reason: ReasonBothEmpty}
	case remote == "":
		return Collection{Reason: ReasonRemoteEmpty}
	case local == "":
		return Collection{NeedsPull: true, Reason: ReasonLocalEmpty}
	case remote > local:
		return Collection{NeedsPull: true, Reason: ReasonOneSideNewer}
	default:
		return Collection{Reason: ReasonNoSyncNeeded}
	}
}
