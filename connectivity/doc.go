// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package connectivity forces the client onto the offline page while the
server is unreachable and back to the landing page when it returns.

A Watcher receives online and offline signals and navigates on each one.
Link handlers consult Rewrite so a click while offline lands on the offline
page. A Prober produces the signals from periodic health checks:

	w := connectivity.NewWatcher(nav, "/app/offline", "/app/dashboard")
	go connectivity.NewProber(client, w, 5*time.Second).Run(ctx)
*/
package connectivity
