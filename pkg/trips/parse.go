package trips

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tripdeck/tripdeck/pkg/uberdriver"
)

// ErrMalformedOffer marks an offer missing a required nested field. Callers
// skip the single offer and continue with the rest of the batch.
var ErrMalformedOffer = errors.New("malformed offer")

// FromOffer converts one raw offer into a persistable trip.
func FromOffer(offer uberdriver.Offer, now time.Time) (*Trip, error) {
	if len(offer.OfferUUIDs) == 0 {
		return nil, fmt.Errorf("%w: no offer uuids", ErrMalformedOffer)
	}
	offerUUID := offer.OfferUUIDs[0]

	primaryOffer := offer.DriverOfferData.PrimaryOffer
	if primaryOffer == nil {
		return nil, fmt.Errorf("%w: no primary offer", ErrMalformedOffer)
	}

	jobOfferModel := primaryOffer.MetaData.JobOfferModel
	if jobOfferModel == nil {
		return nil, fmt.Errorf("%w: no job offer model", ErrMalformedOffer)
	}

	jobOfferView := primaryOffer.OfferView.JobOfferViewV3
	payment := clusterLabelText(jobOfferView.CoreInfo.DefaultView.Clusters, "$")
	distance := clusterLabelText(jobOfferView.Clusters, "total")

	stopOrder := []string{jobOfferModel.StartLocationRef}
	stopOrder = append(stopOrder, jobOfferModel.ViaLocationRefs...)
	stopOrder = append(stopOrder, jobOfferModel.EndLocationRef)

	return &Trip{
		Created: now,

		OfferUUID: offerUUID,
		JobUUID:   primaryOffer.JobUUID,

		Locations: NormalizeLocations(jobOfferModel.LocationMap, stopOrder),

		Expires:  jobOfferModel.ExpiresAtEpochMS,
		Payment:  payment,
		Distance: distance,

		Completed: false,
		Accepted:  false,
	}, nil
}

// clusterLabelText returns the first label text containing search, or an
// empty string when nothing matches.
func clusterLabelText(clusters []uberdriver.Cluster, search string) string {
	for _, cluster := range clusters {
		for _, element := range cluster.Elements {
			if element.Label == nil {
				continue
			}

			labelText := element.Label.Text.Text
			if strings.Contains(labelText, search) {
				return labelText
			}
		}
	}

	return ""
}
