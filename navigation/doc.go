// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package navigation maps client paths to page handlers and keeps the
in-memory history that back and forward moves walk.

# Route Table

A Table is an ordered list of regular expressions plus one default handler.
Patterns are searched in the fragment left after the root prefix and
surrounding slashes are stripped, and the first match wins:

	table := navigation.NewTable()
	table.Add(`community/player/(.*)`, showPlayer) // before `community`
	table.Add(`community`, showCommunity)
	table.AddDefault(showDashboard)

Capture groups are passed to the handler in order.

# Navigator

A Navigator owns the current path. Navigate pushes an entry, Replace swaps
the current one, and Go/Back/Forward move the cursor and re-dispatch without
pushing:

	nav := navigation.NewNavigator(table)
	nav.Configure(navigation.Config{Mode: navigation.ModeHistory, Root: "/app"})
	nav.Check() // dispatch the start location
	nav.Navigate("/app/rankings")

In ModeHash the address reads "/app#/rankings"; EventHashChange events from
Listen are resolved against the root.

Dispatches never overlap. A navigation made while another is dispatching,
from another goroutine or from inside a handler, is queued behind it, so the
last handler run always matches the current path.
*/
package navigation
