package classifier

import (
	"context"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/pkg/metrics"
)

// instrumented counts calls per provider and outcome.
type instrumented struct {
	domainClassifier.IClassifier
	metrics *metrics.Metrics
}

func (i *instrumented) Classify(ctx context.Context, imagePath string) (*domainClassifier.Result, error) {
	res, err := i.IClassifier.Classify(ctx, imagePath)
	i.metrics.ObserveClassifier(string(i.Provider()), err)
	return res, err
}
