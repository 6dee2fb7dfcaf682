package instance

import "os"

// GetID returns the process instance identifier used to tell mock backend
// replicas apart in logs. DYNO is honored for hosted dev deployments.
func GetID() string {
	for _, key := range []string{"AGENTFASHION_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
