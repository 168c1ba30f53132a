package env

import (
	"os"
)

// PodName is set by the deployment, e.g. auctionhouse-api-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}
