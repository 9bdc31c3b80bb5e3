package constants

const (
	MsgFleetViolationA380 = "Fleet Violation: A380/A388 aircraft is not permitted for Levant VA operations."
	MsgFleetViolationVFR  = "Fleet Violation: this aircraft type is not permitted for scheduled operations."
	MsgTrackerLinkFormat  = "Tracker link must be a valid IVAO tracker URL (e.g. https://tracker.ivao.aero/...)."
	MsgProofRequired      = "You must provide either a tracker link or a screenshot for manual submission."
	MsgDuplicateWarning   = "WARNING: A flight on this route was already logged today — staff will review for duplicates."
	MsgManualSubmitted    = "Manual PIREP submitted successfully. Staff will review your submission."
	MsgAutoApproved       = "PIREP approved. Settlement has been queued."
	MsgAutoRejected       = "PIREP rejected: landing rate exceeds the automatic rejection threshold."
	MsgHeldNoLandingData  = "PIREP held for review: no landing rate data available."
	MsgBidExpired         = "Bid has expired. Create a new bid to fly this route."
	MsgBidReplaced        = "Previous bid cancelled and replaced."
)
