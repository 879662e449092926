package trips

import "time"

// Stop is a normalized, deduplicated, display ready waypoint derived from an
// offer's location map. Order is the position in the canonical visiting order,
// or -1 when the stop was not part of it.
type Stop struct {
	ID        string  `bson:"id" json:"id" groups:"basic"`
	Latitude  float64 `bson:"latitude" json:"latitude" groups:"basic"`
	Longitude float64 `bson:"longitude" json:"longitude" groups:"basic"`

	Name string `bson:"name" json:"name" groups:"basic"`
	Text string `bson:"text" json:"text" groups:"basic"`
	Maps string `bson:"maps" json:"maps" groups:"basic"`

	Order int `bson:"order" json:"order" groups:"basic"`

	Location GeoJSON `bson:"coordinates" json:"coordinates" groups:"basic"`
}

// GeoJSON is a Mongo storable point, coordinates in longitude latitude order.
type GeoJSON struct {
	Type        string    `bson:"type" json:"type" groups:"basic"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" groups:"basic"`
}

func NewGeoJSONPoint(latitude float64, longitude float64) GeoJSON {
	return GeoJSON{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

// Trip is the persisted record for one offer, keyed by OfferUUID. Re-upserts
// for the same key merge fields rather than duplicating.
type Trip struct {
	Created time.Time `bson:"created" json:"created" groups:"basic"`

	OfferUUID string `bson:"offer_uuid" json:"offer_uuid" groups:"basic"`
	JobUUID   string `bson:"job_uuid" json:"job_uuid" groups:"basic"`

	Locations []Stop `bson:"locations" json:"locations" groups:"basic"`

	Expires  int64  `bson:"expires" json:"expires" groups:"basic"`
	Payment  string `bson:"payment" json:"payment" groups:"basic"`
	Distance string `bson:"distance" json:"distance" groups:"basic"`

	Completed bool `bson:"completed" json:"completed" groups:"basic"`
	Accepted  bool `bson:"accepted" json:"accepted" groups:"basic"`
}
