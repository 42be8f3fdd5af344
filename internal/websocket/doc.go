// Package websocket serves dashboard range sessions over gorilla/websocket.
//
// A client connects to /ws/dashboard and receives a "connection" message with
// its session ID and the dataset bounds. It then sends range requests:
//
//	{"type":"range","id":"r1","start":"2018-01-01","end":"2018-01-31","top":5}
//
// and gets back either a "dashboard" message whose data is the full dashboard
// for that range, or an "error" message whose error member carries the same
// codes as the HTTP API (VALIDATION_FAILED, INVALID_RANGE,
// DATASET_UNAVAILABLE). Requests on one session are answered in order.
//
// The Hub only tracks open sessions; there is no broadcast.
package websocket
