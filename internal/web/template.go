package web

import (
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/sweeney/arrow-keys/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	// seconds renders whole seconds, e.g. 26h3m0s.
	"seconds": func(d time.Duration) string { return d.Truncate(time.Second).String() },
	"ms":      func(n int64) time.Duration { return time.Duration(n) * time.Millisecond },
	"onoff": func(b bool, on, off string) string {
		if b {
			return on
		}
		return off
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>{{.Config.DeviceName}}</title>
<style>
body { font: 14px/1.4 ui-monospace, monospace; background: #111; color: #ddd; max-width: 36em; margin: 1.5em auto; padding: 0 1em; }
h1 { font-size: 1.3em; color: #fff; }
h2 { font-size: 1em; text-transform: uppercase; color: #999; margin-top: 1.5em; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 3px 6px; border-bottom: 1px solid #333; }
th { width: 45%; font-weight: normal; color: #aaa; }
a { color: #8af; }
.pressed, .up { color: #4c4; font-weight: bold; }
.released { color: #666; }
.down { color: #e55; }
</style>
</head>
<body>
<h1>{{.Config.DeviceName}}</h1>

<h2>Keys</h2>
<table>
<tr><th>Poller</th><td>{{.PollerState}}</td></tr>
<tr><th>Host</th><td class="{{onoff .PeerConnected "up" "down"}}">{{onoff .PeerConnected "connected" "waiting"}} ({{.Config.Transport}})</td></tr>
<tr><th>Line A (GPIO {{.Config.PinA}})</th><td id="key-a" class="{{onoff (.Keys.Contains .Config.CodeA) "pressed" "released"}}">{{.Config.CodeA}}</td></tr>
<tr><th>Line B (GPIO {{.Config.PinB}})</th><td id="key-b" class="{{onoff (.Keys.Contains .Config.CodeB) "pressed" "released"}}">{{.Config.CodeB}}</td></tr>
<tr><th>Report</th><td>{{.Keys}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{onoff .MQTTConnected "up" "down"}}">{{onoff .MQTTConnected "connected" "disconnected"}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Activity</h2>
<table>
<tr><th>Key down</th><td>{{.Counts.Down}}</td></tr>
<tr><th>Key up</th><td>{{.Counts.Up}}</td></tr>
{{range .Presses}}<tr><th>{{.Name}}</th><td>{{.Count}}</td></tr>
{{end}}<tr><th>Ticks</th><td>{{.Stats.Ticks}}</td></tr>
<tr><th>Reports sent</th><td>{{.Stats.Reports}}</td></tr>
<tr><th>Skipped (no host)</th><td>{{.Stats.Skipped}}</td></tr>
<tr><th>Read errors</th><td>{{.Stats.ReadErrors}}</td></tr>
<tr><th>Send errors</th><td>{{.Stats.SendErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{seconds .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Instance</th><td>{{.InstanceID}}</td></tr>
<tr><th>Poll</th><td>{{ms .Config.PollMs}}</td></tr>
<tr><th>Startup delay</th><td>{{ms .Config.StartupDelayMs}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{ms .Config.HeartbeatMs}}{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type pressCount struct {
	Name  string
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	presses := make([]pressCount, 0, len(snap.Counts.Presses))
	for name, n := range snap.Counts.Presses {
		presses = append(presses, pressCount{Name: name, Count: n})
	}
	sort.Slice(presses, func(i, j int) bool { return presses[i].Name < presses[j].Name })

	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Presses []pressCount
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Presses:  presses,
	}
	indexTmpl.Execute(w, data)
}
