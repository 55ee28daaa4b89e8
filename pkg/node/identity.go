package node

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "sensornode"

// ID returns a stable identifier of this node, used as the MQTT client id
// and topic prefix. It falls back to the hostname.
func ID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil && len(id) >= 12 {
		return appID + "-" + id[:12]
	}
	glog.Warningf("machine id unavailable: %v", err)

	host, err := os.Hostname()
	if err != nil || host == "" {
		return appID
	}
	return appID + "-" + host
}
