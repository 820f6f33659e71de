// Package cli implements the pulsemon command-line interface.
//
// # Command Structure
//
// The root command is "pulsemon". Run bare, it starts monitoring; the
// subcommands cover setup and inspection:
//
//	pulsemon                  - Listen for the sensor and show the dashboard
//	pulsemon monitor          - Same, as an explicit subcommand
//	pulsemon init             - Create .pulsemon.yaml
//	pulsemon config show|path|set
//	pulsemon version
//	pulsemon completion <shell>
//
// # Monitoring
//
// runMonitor resolves the config (file, PULSEMON_* environment, then
// explicitly set flags through viper bindings) and hands it to
// monitorCommand, which owns one session.Session for the life of the
// process:
//
//  1. Start the optional /metrics and /ws servers, binding before the
//     session so a busy port fails fast
//  2. Run the session on its own goroutine
//  3. Show the Bubble Tea dashboard, or the headless printer when stdout
//     isn't a terminal
//  4. Cancel the session when the display returns, then export on exit
//
// # Flag Handling
//
// Global flags (--config, --no-color) are defined on the root command and
// available to all subcommands. The monitor flags are registered on both
// the root and monitor commands so "pulsemon --port 9000" works.
package cli
