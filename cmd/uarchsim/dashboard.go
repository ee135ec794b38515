// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// pipelineStats is polled by the dashboard's own small JSON endpoint,
// separate from statsview's Go-runtime charts, so a browser front end can
// chart simulation-specific counters (tick rate, retirement rate) rather
// than just heap/goroutine figures.
type pipelineStats struct {
	Tick    uint64 `json:"tick"`
	Stage   string `json:"stage"`
	Retired uint64 `json:"retired"`
}

func newDashboardCmd() *cobra.Command {
	var addr string
	var statsAddr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve a live statsview dashboard over the demo pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, p, err := buildDemo(false)
			if err != nil {
				return err
			}

			viewer := statsview.New(statsview.WithAddr(statsAddr))
			go viewer.Start()

			go func() {
				ticker := time.NewTicker(10 * time.Millisecond)
				defer ticker.Stop()
				for range ticker.C {
					if err := sched.Run(1, false); err != nil {
						return
					}
				}
			}()

			mux := http.NewServeMux()
			mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(pipelineStats{
					Tick:    uint64(sched.CurrentTick()),
					Stage:   p.Stage.Value().String(),
					Retired: p.Retired(),
				})
			})

			handler := cors.Default().Handler(mux)
			return http.ListenAndServe(addr, handler)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8090", "address to serve the pipeline stats API on")
	cmd.Flags().StringVar(&statsAddr, "stats-addr", ":18066", "address statsview serves its runtime charts on")
	return cmd
}
