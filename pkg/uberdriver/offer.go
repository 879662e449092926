package uberdriver

// Location is a single entry in an offer's location map. The same coordinate
// pair can appear under multiple keys, with at most one variant carrying a
// title.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Title     string  `json:"title,omitempty"`
	Subtitle  string  `json:"subtitle,omitempty"`
}

type ClusterElementLabel struct {
	Text struct {
		Text string `json:"text"`
	} `json:"text"`
}

type ClusterElement struct {
	Label *ClusterElementLabel `json:"label,omitempty"`
}

type Cluster struct {
	Elements []ClusterElement `json:"elements"`
}

// JobOfferModel carries the routing half of a primary offer - the location
// map plus the start/via/end references that define visiting order.
type JobOfferModel struct {
	StartLocationRef string              `json:"startLocationRef"`
	EndLocationRef   string              `json:"endLocationRef"`
	ViaLocationRefs  []string            `json:"viaLocationRefs"`
	LocationMap      map[string]Location `json:"locationMap"`
	ExpiresAtEpochMS int64               `json:"expiresAtEpochMS"`
}

// JobOfferView carries the display half - label text for payment lives under
// coreInfo.defaultView.clusters, distance under the top level clusters.
type JobOfferView struct {
	CoreInfo struct {
		DefaultView struct {
			Clusters []Cluster `json:"clusters"`
		} `json:"defaultView"`
	} `json:"coreInfo"`
	Clusters []Cluster `json:"clusters"`
}

type PrimaryOffer struct {
	JobUUID  string `json:"jobUUID"`
	MetaData struct {
		JobOfferModel *JobOfferModel `json:"jobOfferModel"`
	} `json:"metaData"`
	OfferView struct {
		JobOfferViewV3 JobOfferView `json:"jobOfferViewV3"`
	} `json:"offerView"`
}

type Offer struct {
	OfferUUIDs      []string `json:"offerUUIDs"`
	DriverOfferData struct {
		PrimaryOffer *PrimaryOffer `json:"primaryOffer"`
	} `json:"driverOfferData"`
}
