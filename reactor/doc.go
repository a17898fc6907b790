// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the poller backends the fd event core drives
// (api.Backend) and the Registry that picks one at startup and falls
// back on fork recovery failure: epoll on Linux, kqueue on BSD/Darwin,
// and a portable poll(2) fallback, all level-triggered only.
package reactor
