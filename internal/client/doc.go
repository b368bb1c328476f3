// Package client implements the authenticated HTTP surface of the Kai
// backend.
//
// All calls share one request pipeline (see client.go): requests are fully
// buffered, a bearer token is attached, and a 401 triggers exactly one
// coalesced token refresh followed by one replay of the original request.
// Transport failures are reported as ConnectivityError so the replay layer
// can queue the work instead of surfacing an error. Session credentials
// persist through a TokenStore; the default FileTokenStore keeps a JSON
// file with 0600 permissions in the state directory.
package client
