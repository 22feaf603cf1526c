// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable pieces of the shopassist chat panel.

  - ToastManager (toast.go): transient notifications, newest first,
    auto-dismissed, with bursts rate limited by golang.org/x/time/rate.
  - Launcher and UnreadBadge (launcher.go): the collapsed panel.
  - RenderActions and ActionAt (launcher.go): suggested-action chips bound
    to number keys.

Components are pure render functions over a *styles.Theme plus small
state holders; the chat model owns when they are shown.
*/
package components
