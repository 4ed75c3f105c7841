// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/kicker/cliparse"
	"github.com/danielhkuo/kicker/middleware"
	"github.com/danielhkuo/kicker/models"
)

// maxAvatarBytes caps decoded avatar uploads
const maxAvatarBytes = 2 << 20

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

type ProfileHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewProfileHandler(db *sql.DB, cfg cliparse.Config) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg}
}

// UpdateProfile handles POST /app/json/update_profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playerID := middleware.PlayerID(ctx)

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be at most 100 characters")
		return
	}

	if req.Avatar != "" {
		raw, err := base64.StdEncoding.DecodeString(req.Avatar)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "avatar must be base64 encoded")
			return
		}
		if len(raw) > maxAvatarBytes {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "avatar is too large")
			return
		}
		if !allowedAvatarTypes[http.DetectContentType(raw)] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "avatar must be a PNG, JPEG, GIF or WebP image")
			return
		}
	}

	var mainKicker *string
	if req.MainKicker != "" {
		var exists bool
		err := h.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM kicker WHERE id = $1)
		`, req.MainKicker).Scan(&exists)
		if err != nil {
			slog.Error("failed to check kicker", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exists {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown kicker: "+req.MainKicker)
			return
		}
		mainKicker = &req.MainKicker
	}

	var tagline *string
	if req.Tagline != "" {
		tagline = &req.Tagline
	}

	_, err := h.db.ExecContext(ctx, `
		UPDATE player SET name = $1, tagline = $2, main_kicker_id = $3 WHERE id = $4
	`, req.Name, tagline, mainKicker, playerID)
	if err != nil {
		slog.Error("failed to update profile", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if req.Avatar != "" {
		_, err = h.db.ExecContext(ctx, `UPDATE player SET avatar = $1 WHERE id = $2`, req.Avatar, playerID)
		if err != nil {
			slog.Error("failed to store avatar", "error", err, "player_id", playerID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	player, err := loadPlayer(ctx, h.db, playerID, time.Now().UTC())
	if err != nil {
		slog.Error("failed to reload player", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("profile updated", "player_id", playerID, "avatar", req.Avatar != "")

	middleware.JSONResponse(w, http.StatusOK, models.UpdateProfileResponse{
		Success: true,
		Player:  player,
	})
}

// Avatar handles GET /app/avatar and GET /app/avatar/{id}
func (h *ProfileHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	if playerID == "" {
		playerID = middleware.PlayerID(r.Context())
	}

	var stored sql.NullString
	err := h.db.QueryRowContext(r.Context(), `
		SELECT avatar FROM player WHERE id = $1
	`, playerID).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to read avatar", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	content := placeholderAvatar()
	if stored.Valid && stored.String != "" {
		if raw, err := base64.StdEncoding.DecodeString(stored.String); err == nil {
			content = raw
		} else {
			slog.Warn("stored avatar is not valid base64", "player_id", playerID)
		}
	}

	sum := sha256.Sum256(content)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(content))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

var (
	placeholderOnce  sync.Once
	placeholderBytes []byte
)

// placeholderAvatar returns a plain grey PNG used when a player has no avatar
func placeholderAvatar() []byte {
	placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		grey := color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				img.Set(x, y, grey)
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			slog.Error("failed to encode placeholder avatar", "error", err)
		}
		placeholderBytes = buf.Bytes()
	})
	return placeholderBytes
}
