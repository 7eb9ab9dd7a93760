package engine

import "github.com/pefman/terraform-tracker/internal/models"

// MergeRemoteSnapshot combines a roster read from the room server with the
// local working copy.
//
// Remote players come first, in remote order; each is taken from the remote
// copy except the active player, whose local copy wins when one exists (an
// in-flight local edit must not be replaced by a read that started before it).
// Players only known locally, e.g. created but not yet flushed, follow in
// local order. The result shares no memory with either input.
func MergeRemoteSnapshot(remote, local models.Roster, activeID string) models.Roster {
	merged := make(models.Roster, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote)+len(local))
	for _, rp := range remote {
		if seen[rp.ID] {
			continue
		}
		seen[rp.ID] = true
		if activeID != "" && rp.ID == activeID {
			if lp, ok := local.Find(rp.ID); ok {
				merged = append(merged, lp.Clone())
				continue
			}
		}
		merged = append(merged, rp.Clone())
	}
	for _, lp := range local {
		if seen[lp.ID] {
			continue
		}
		seen[lp.ID] = true
		merged = append(merged, lp.Clone())
	}
	return merged
}

// withoutIDs drops the listed players; used to keep locally deleted players
// from coming back through a merge before the deletion reaches the server.
func withoutIDs(r models.Roster, ids map[string]struct{}) models.Roster {
	if len(ids) == 0 {
		return r
	}
	out := r[:0:0]
	for _, p := range r {
		if _, gone := ids[p.ID]; !gone {
			out = append(out, p)
		}
	}
	return out
}

// withLocal puts back the local copy of every listed player present in r.
// r must not share memory with local.
func withLocal(r, local models.Roster, ids map[string]struct{}) models.Roster {
	if len(ids) == 0 {
		return r
	}
	for i, p := range r {
		if _, ok := ids[p.ID]; !ok {
			continue
		}
		if lp, ok := local.Find(p.ID); ok {
			r[i] = lp.Clone()
		}
	}
	return r
}

// reconcile merges a server roster into the local one, then drops players
// deleted locally and keeps local copies of players edited locally, until a
// write confirms both.
func reconcile(remote, local models.Roster, activeID string, deleted, edited map[string]struct{}) models.Roster {
	merged := withoutIDs(MergeRemoteSnapshot(remote, local, activeID), deleted)
	return withLocal(merged, local, edited)
}
