// Package realtime provides a websocket client for the Nearby realtime
// channel.
//
// Frames are JSON text messages of the form {"event": "...", "data": ...}.
// The socket authenticates with the session credential as a bearer token at
// dial time and keeps itself alive with pings.
//
//	rt := realtime.New(realtime.DefaultConfig("wss://api.example.com/ws"), store)
//	rt.On("nearby-user-update", func(data json.RawMessage) { ... })
//	if err := rt.Connect(ctx); err != nil {
//		return err
//	}
//	defer rt.Close()
//
//	_ = rt.Emit(ctx, "location-update", loc)
//
// Handlers run on the read loop, one frame at a time. A handler must not
// call Close.
package realtime
