// Package tgui provides small Telegram UI helpers:
//   - Inline keyboard builders
//   - Callback data helpers (ns:action:payload)
//   - Pagination for long button lists
package tgui
