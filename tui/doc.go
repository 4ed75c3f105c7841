// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tui hosts the kicker shell in a terminal with bubbletea.

The screen plays the browser: a header with the player's name and the
current address, the slide-out menu, the content Region pages are mounted
into, a status line and an input line.

# Input

Typing a path and pressing enter follows it like a link. Lines starting
with ":" are commands:

	:back :forward :menu [open|close] :open N :reload
	:edit :save name=...&tagline=...&avatar=@file.png
	:period week|month|year|all :sort won|lost|matches asc|desc
	:submit team1=ID&team2=ID&team2=ID&score1=10&score2=7
	:online :offline :quit

In hash mode "#/rankings" changes the hash. With an empty input, digits
follow the numbered menu entries while the menu is open and the page's
links otherwise. ctrl+b and ctrl+f walk the history and ctrl+n toggles the
menu. History moves and hash changes go through the app's event loop.
*/
package tui
