package node

import "time"

// newTimer is replaced in tests.
var newTimer = time.NewTimer
