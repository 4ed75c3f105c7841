// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pages manages the single active page of the client shell.

# Switching

A Switcher is built from a fixed Registry of page factories, a Requester
for page data and the Region pages are mounted into:

	sw := pages.NewSwitcher(registry, client, region,
		pages.WithMenu(menu),
		pages.WithReusePolicy(pages.ReuseByID),
	)
	sw.SwitchTo("communityProfile", pages.Params{"player_id": "42"})

With ReuseByID a switch to the active id keeps the instance whatever the
params; ReuseByParams remounts when they differ.

# Loading

A new page's Fetches run concurrently. Once all of them succeed the page is
rendered and mounted. Each load carries a generation number and is dropped
if another switch happened in the meantime. A failed load is logged as a
*DataFetchError and the previous view stays mounted; its page becomes
active again.

Current is the page whose view is mounted, which is not the requested page
while a load is in flight. Reload refetches it in place; Rerender renders it
again from the last results.
*/
package pages
