package handlers

import (
	"github.com/shikho/dynqr/internal/resolver"
)

// ScanView is the JSON form of a resolution result. Exactly one of
// Destination, TargetProgram, RequiredProgram or Error is set, matching
// Outcome.
type ScanView struct {
	Outcome         resolver.Outcome          `json:"outcome"`
	Payload         string                    `json:"payload,omitempty"`
	Destination     *resolver.ShowDestination `json:"destination,omitempty"`
	TargetProgram   string                    `json:"targetProgram,omitempty"`
	RequiredProgram string                    `json:"requiredProgram,omitempty"`
	Pending         *ScanView                 `json:"pending,omitempty"`
	Error           *ScanError                `json:"error,omitempty"`
	Message         string                    `json:"message"`
}

type ScanError struct {
	Kind   resolver.ErrorKind `json:"kind"`
	Detail string             `json:"detail,omitempty"`
}

var resolutionText = map[resolver.ErrorKind]string{
	resolver.MalformedPayload:   "Invalid QR code format",
	resolver.RecordNotFound:     "QR code not found in database. Please create it in CMS first.",
	resolver.LinkedQuizNotFound: "Linked quiz not found.",
	resolver.InvalidMapping:     "This QR code is misconfigured.",
}

// NewScanView converts a result for the app.
func NewScanView(res resolver.Result) ScanView {
	switch r := res.(type) {
	case resolver.ShowDestination:
		d := r
		return ScanView{Outcome: r.Outcome(), Destination: &d, Message: "Opening " + string(r.Kind) + "."}
	case resolver.RequireProgramSwitch:
		v := ScanView{
			Outcome:       r.Outcome(),
			TargetProgram: r.TargetProgram,
			Message:       "This content is in " + r.TargetProgram + ". Switch program to continue.",
		}
		if r.Pending != nil {
			p := NewScanView(r.Pending)
			v.Pending = &p
		}
		return v
	case resolver.RequirePurchase:
		return ScanView{
			Outcome:         r.Outcome(),
			RequiredProgram: r.RequiredProgram,
			Message:         "Unlock " + r.RequiredProgram + " to view this content.",
		}
	case resolver.ResolutionError:
		return ScanView{
			Outcome: r.Outcome(),
			Error:   &ScanError{Kind: r.Kind, Detail: r.Detail},
			Message: resolutionText[r.Kind],
		}
	}
	return ScanView{Outcome: resolver.OutcomeError, Message: "Unexpected result."}
}
