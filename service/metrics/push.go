package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job label used for solping runs.
const JobName = "solping"

// Push sends everything gathered by g to the Pushgateway at url, replacing
// any metrics previously pushed under the same job and grouping labels.
func Push(ctx context.Context, url string, g prometheus.Gatherer, grouping map[string]string) error {
	pusher := push.New(url, JobName).Gatherer(g)
	for name, value := range grouping {
		pusher = pusher.Grouping(name, value)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
