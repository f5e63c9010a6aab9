package model

// Viewer is the identity the derived flags are computed for. Known is false
// until the own-id lookup of an authenticated session has succeeded; an
// unknown viewer owns nothing and may do nothing.
type Viewer struct {
	UserID int64
	Known  bool
}

func KnownViewer(id int64) Viewer {
	return Viewer{UserID: id, Known: true}
}

func (v Viewer) Is(id int64) bool {
	return v.Known && v.UserID == id
}

// IsOwnTask is computed client-side; the server never supplies it.
func IsOwnTask(task Task, v Viewer) bool {
	return v.Is(task.ClientID)
}

func HasUserOffer(offers []Offer, v Viewer) bool {
	for _, o := range offers {
		if v.Is(o.FreelancerID) {
			return true
		}
	}
	return false
}

func CanMakeOffer(task Task, offers []Offer, v Viewer) bool {
	return v.Known && !IsOwnTask(task, v) && !HasUserOffer(offers, v)
}

func CanAcceptOffer(task Task, offer Offer, v Viewer) bool {
	return IsOwnTask(task, v) && !offer.Accepted
}

// CanReview holds for a completed task when the viewer is its client or the
// freelancer whose offer was accepted.
func CanReview(task Task, offers []Offer, v Viewer) bool {
	if !v.Known || task.Status != TaskStatusCompleted {
		return false
	}
	if IsOwnTask(task, v) {
		return true
	}
	for _, o := range offers {
		if o.Accepted && v.Is(o.FreelancerID) {
			return true
		}
	}
	return false
}

// AcceptedOffer returns the first accepted offer. The server should expose at
// most one; the client does not rely on it.
func AcceptedOffer(offers []Offer) (Offer, bool) {
	for _, o := range offers {
		if o.Accepted {
			return o, true
		}
	}
	return Offer{}, false
}
