// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kickerapp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FormField is one serialized form entry. Keys may repeat.
type FormField struct {
	Name  string
	Value string
}

// ParseForm splits an urlencoded form into fields, keeping their order and
// repeated keys.
func ParseForm(s string) ([]FormField, error) {
	var fields []FormField
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("invalid form entry %q: %w", pair, err)
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		fields = append(fields, FormField{Name: name, Value: value})
	}
	return fields, nil
}

// scoreParams builds the score submission body. Repeated team1 and team2
// entries are collected into arrays and the scores become integers; every
// other key keeps its last value.
func scoreParams(fields []FormField) (map[string]any, error) {
	team1, team2 := []string{}, []string{}
	params := map[string]any{}
	for _, f := range fields {
		switch f.Name {
		case "team1":
			team1 = append(team1, f.Value)
		case "team2":
			team2 = append(team2, f.Value)
		case "score1", "score2":
			if strings.TrimSpace(f.Value) == "" {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(f.Value))
			if err != nil {
				return nil, fmt.Errorf("%s must be a number, got %q", f.Name, f.Value)
			}
			params[f.Name] = n
		default:
			params[f.Name] = f.Value
		}
	}
	params["team1"] = team1
	params["team2"] = team2
	return params, nil
}
