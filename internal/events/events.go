package events

import "github.com/shikho/dynqr/internal/models"

// OnScan is called after every resolution attempt has been recorded.
// services will call this if it's set.
var OnScan func(ev models.ScanEvent)
