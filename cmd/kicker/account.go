// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/kicker/apiclient"
	"github.com/danielhkuo/kicker/models"
)

func signupCmd(opts *options) *cobra.Command {
	var req models.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a league account",
		Long:  `Create an account and print its player token.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := apiclient.New(opts.server)
			resp, err := client.Signup(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("signup: %w", err)
			}
			printToken(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Login, "login", "l", "", "Login (letters, digits, underscore)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (at least 6 characters)")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Email address")
	cmd.MarkFlagRequired("login")
	cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd(opts *options) *cobra.Command {
	var req models.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Get a fresh player token",
		Long:  `Log in and print a new player token. Older tokens stop working.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return login(cmd.Context(), cmd.OutOrStdout(), apiclient.New(opts.server), req)
		},
	}

	cmd.Flags().StringVarP(&req.Login, "login", "l", "", "Login")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password")
	cmd.MarkFlagRequired("login")
	cmd.MarkFlagRequired("password")

	return cmd
}

func login(ctx context.Context, out io.Writer, client *apiclient.Client, req models.LoginRequest) error {
	resp, err := client.Login(ctx, req)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return errors.New("login: wrong login or password")
		}
		return fmt.Errorf("login: %w", err)
	}
	printToken(out, resp)
	return nil
}

func printToken(out io.Writer, resp *models.SignupResponse) {
	fmt.Fprintf(out, "Player: %s\n", resp.PlayerID)
	if !resp.Active {
		fmt.Fprintln(out, "This account is not enrolled as a kicker player yet.")
	}
	fmt.Fprintf(out, "\nexport KICKER_TOKEN=%s\n", resp.PlayerToken)
}
