// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the HTTP client for the kicker server.

Request posts a JSON body and returns the raw JSON result, which makes
*Client the pages.Requester used by the client shell:

	c := apiclient.New("http://localhost:3318", apiclient.WithToken(token))
	raw, err := c.Request(ctx, "/app/json/rankings", map[string]any{"period": "week"})

A non-2xx status, or a 2xx body with an "errors" key, is returned as *Error
carrying the status and the server's message. Signup and Login store the
returned player token for later requests.
*/
package apiclient
