// Package location reports the signed-in user's position and queries other
// users' positions.
//
// Service wraps the location endpoints. When a realtime client is attached,
// UpdateLocation also broadcasts the position and Subscribe delivers
// nearby-user-update and user-location-changed events.
//
// Tracker turns a stream of fixes from a PositionSource into throttled
// location pushes:
//
//	tr, err := location.NewTracker(svc, gpsSource)
//	if err != nil {
//		return err
//	}
//	if err := tr.Start(ctx); err != nil {
//		return err
//	}
//	defer tr.Stop()
//
// Throttling is controlled by TrackerConfig: a fix is pushed when the
// fastest interval has passed and the user either moved past the distance
// filter or the regular interval elapsed.
package location
