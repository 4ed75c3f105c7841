// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kickerapp is the league's client shell. It registers the routes and
pages against the navigation core and exposes the actions a host binds to
keys or commands.

# Routes

Routes live under /app and are added most specific first:

	dashboard, profile, rankings, community/player/(.*), community,
	score, about, offline, default -> dashboard

# Pages

Each page declares its fetches and renders a styled text view:

  - dashboard: totals, weekly stats, teammates and nightmares
  - profile: own profile with an edit mode (ToggleEdit, SaveProfile)
  - rankings: period filter (SetPeriod) and client-side sort (Sort)
  - community and communityProfile: players and their stats
  - score: the game form (SubmitScore)
  - about and offline: static

# Shell

FollowLink is the in-app link handler: it respects the offline state and
closes the menu. OnProfileChange refreshes the header name and busts the
avatar cache after a save.
*/
package kickerapp
