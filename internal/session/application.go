package session

import (
	"github.com/pluce/openlink/model"
	"github.com/rs/zerolog/log"
)

// ApplyApplicationMessage stamps msg's MIN from the session's counter for
// the sending side (overwriting whatever the client sent), normalizes any
// free-text elements against cat, and updates dialogue tracking: a message
// whose effective response attribute is not N nor NE opens a new dialogue;
// a message carrying an mrn that references an open dialogue closes it,
// unless the message contains a STANDBY element, which never closes a
// dialogue regardless of mrn.
func ApplyApplicationMessage(s *model.CPDLCSession, cat *model.Catalog, fromAircraft bool, initiator model.AcarsEndpointCallsign, msg *model.CpdlcApplicationMessage) {
	cat.NormalizeFreeText(msg.Elements)

	if fromAircraft {
		msg.Min = s.NextAircraftMin()
	} else {
		msg.Min = s.NextStationMin()
	}

	if msg.Mrn != nil {
		standby := false
		for _, e := range msg.Elements {
			if model.IsStandby(e.Id) {
				standby = true
				break
			}
		}
		if !standby {
			if !s.CloseDialogue(*msg.Mrn) {
				log.Warn().Int("mrn", *msg.Mrn).Msg("mrn does not reference an open dialogue; forwarding anyway")
			}
		}
	}

	attr := cat.EffectiveResponseAttribute(msg.Elements)
	if attr != model.RespondNotRequired && attr != model.RespondNoResponse {
		s.OpenDialogue(msg.Min, initiator, attr)
	}
}
