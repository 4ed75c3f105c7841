// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides player tokens, password hashing and signup validation.

# Player Tokens

Tokens are random, URL-safe, and handed to the player once at signup or
login. The server stores only an HMAC of the token:

	token, _ := auth.GeneratePlayerToken()
	hash, _ := auth.HashToken(token, cfg.TokenSalt)

Requests authenticate with the X-Player-Token header; the middleware hashes
it and looks the player up by token_hash.

# Passwords

Passwords are stored as bcrypt hashes (golang.org/x/crypto/bcrypt):

	hash, err := auth.HashPassword(pw)
	err = auth.CheckPassword(hash, pw)

# Signup Rules

  - ValidateLogin: handle must match ^\w+$
  - ValidateEmail: optional, must be a three letter handle at the league domain

# Errors

	ErrInvalidToken, ErrInvalidLogin, ErrInvalidEmail,
	ErrInvalidPassword, ErrPasswordTooWeak
*/
package auth
