// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// # Process-wide Handle

var (
	// ErrNotReady is returned by Get before Init succeeded or after Teardown.
	ErrNotReady = errors.New("identity: client not initialized")

	// ErrAlreadyInitialized is returned by a second Init without Teardown.
	ErrAlreadyInitialized = errors.New("identity: client already initialized")
)

var (
	stateMu     sync.Mutex
	initialized bool
	instance    *Client
	initErr     error
	events      = NewBus()
)

/*
Init configures the process-wide client and publishes [EventReady].

It runs once; later calls return [ErrAlreadyInitialized] until [Teardown].
A failed init is also final until Teardown, and its error is carried in the
ready event and returned by [Get].

When cfg.InitialCustomToken is set, Init exchanges it for a session. A failed
exchange is logged and does not fail Init.
*/
func Init(ctx context.Context, cfg Config) error {
	stateMu.Lock()
	defer stateMu.Unlock()

	if initialized {
		return ErrAlreadyInitialized
	}
	initialized = true

	client, err := NewClient(cfg, events)
	if err != nil {
		initErr = err
		events.Publish(EventReady{Err: err})
		return err
	}

	if cfg.InitialCustomToken != "" {
		if _, err := client.SignInWithCustomToken(ctx, cfg.InitialCustomToken); err != nil {
			client.logger.WarnContext(ctx, "identity_initial_token_rejected", slog.Any("error", err))
		}
	}

	instance = client
	events.Publish(EventReady{Client: client})
	return nil
}

// Get returns the process-wide client, [ErrNotReady], or the error Init failed with.
func Get() (*Client, error) {
	stateMu.Lock()
	defer stateMu.Unlock()

	if instance != nil {
		return instance, nil
	}
	if initErr != nil {
		return nil, errors.Join(ErrNotReady, initErr)
	}
	return nil, ErrNotReady
}

// Subscribe listens to the process-wide event stream. See [Bus.Subscribe].
func Subscribe(buffer int) (<-chan Event, func()) {
	return events.Subscribe(buffer)
}

// Teardown signs out and releases the process-wide client.
func Teardown() {
	stateMu.Lock()
	defer stateMu.Unlock()

	if instance != nil {
		instance.SignOut()
	}
	instance = nil
	initErr = nil
	initialized = false
	events.reset()
}
