package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/joshharrison/critpath/internal/reporter"
)

// --- Graph types (what the page renders) ---

type GraphNode struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Delay      float64 `json:"delay"`
	Arrival    float64 `json:"arrival"`
	Slack      float64 `json:"slack"`
	Level      int     `json:"level"`
	IsCritical bool    `json:"is_critical"`
}

type GraphEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	IsCritical bool   `json:"is_critical"`
}

type GraphMetadata struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CreatedAt  string  `json:"created_at"`
	TotalDelay float64 `json:"total_delay"` // display units
	Components int     `json:"components"`
}

type Graph struct {
	Nodes        []GraphNode   `json:"nodes"`
	Edges        []GraphEdge   `json:"edges"`
	CriticalPath []string      `json:"critical_path"`
	Metadata     GraphMetadata `json:"metadata"`
}

// toGraph converts a Report into the normalised Graph the page renders.
func toGraph(rep *reporter.Report) *Graph {
	scale := rep.DisplayScale
	if scale == 0 {
		scale = 1
	}

	nodes := make([]GraphNode, 0, len(rep.Components))
	for _, ct := range rep.Components {
		nodes = append(nodes, GraphNode{
			ID:         ct.ID,
			Type:       ct.Type,
			Delay:      ct.Delay * scale,
			Arrival:    ct.Arrival * scale,
			Slack:      ct.Slack * scale,
			Level:      ct.Level,
			IsCritical: ct.IsCritical,
		})
	}

	next := make(map[string]string, len(rep.CriticalPath))
	for i := 0; i+1 < len(rep.CriticalPath); i++ {
		next[rep.CriticalPath[i]] = rep.CriticalPath[i+1]
	}

	edges := make([]GraphEdge, 0, len(rep.Edges))
	for _, e := range rep.Edges {
		edges = append(edges, GraphEdge{From: e.From, To: e.To, IsCritical: next[e.From] == e.To})
	}

	return &Graph{
		Nodes:        nodes,
		Edges:        edges,
		CriticalPath: rep.CriticalPath,
		Metadata: GraphMetadata{
			ID:         rep.ID,
			Name:       rep.Name,
			CreatedAt:  rep.CreatedAt.Format(time.RFC3339),
			TotalDelay: rep.TotalDelay * scale,
			Components: len(rep.Components),
		},
	}
}

// --- HTTP server ---

type server struct {
	mu    sync.RWMutex
	graph *Graph
}

func (s *server) handlePostGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rep reporter.Report
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	g := toGraph(&rep)

	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(g)
}

func (s *server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "no graph loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(g)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	title := "critpath"
	if g != nil {
		title = g.Metadata.Name + " - critpath"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, pageData{Title: title}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Handler returns the viewer's HTTP routes. If rep is non-nil it is
// loaded before any request is served.
func Handler(rep *reporter.Report) http.Handler {
	srv := &server{}
	if rep != nil {
		srv.graph = toGraph(rep)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/graph", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			srv.handlePostGraph(w, r)
		case http.MethodGet:
			srv.handleGetGraph(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/", srv.handleIndex)
	return mux
}

// Start launches the viewer HTTP server on the given port in the background.
// Returns the base URL (e.g. "http://localhost:7171") or an error.
func Start(port int, rep *reporter.Report) (string, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("listen on port %d: %w", port, err)
	}

	go http.Serve(ln, Handler(rep))

	addr := fmt.Sprintf("http://localhost:%d", port)
	return addr, nil
}

// PostReport sends a Report to a running viewer server.
func PostReport(addr string, rep *reporter.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	resp, err := http.Post(addr+"/graph", "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("POST /graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("POST /graph returned %d", resp.StatusCode)
	}

	return nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

type pageData struct {
	Title string
}

// pageTemplate fetches /graph and draws it with vis-network, critical
// path in red, arranged left to right by logic level.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<title>{{.Title}}</title>
<script type="text/javascript" src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
<style>
  html, body { height: 100%; margin: 0; }
  body { color: #d3d3d3; font: 12pt arial; background-color: #222222; display: flex; flex-direction: column; }
  #summary { padding: 8px 12px; }
  #circuit-graph { flex: 1; border: 1px solid #444444; }
</style>
<div id="summary">loading…</div>
<div id="circuit-graph"></div>
<script type="text/javascript">
fetch("/graph").then(function (r) {
  if (!r.ok) { throw new Error("no graph loaded"); }
  return r.json();
}).then(function (g) {
  document.getElementById("summary").textContent =
    g.metadata.name + ": " + g.critical_path.join(" → ") +
    " (" + g.metadata.total_delay.toFixed(2) + " time units)";
  var nodes = g.nodes.map(function (n) {
    return {
      id: n.id,
      label: n.id + "\n" + n.type + " (" + n.delay + ")",
      level: n.level,
      group: n.type,
      color: n.is_critical ? "#ff6666" : undefined,
      title: "arrival " + n.arrival.toFixed(2) + ", slack " + n.slack.toFixed(2)
    };
  });
  var edges = g.edges.map(function (e) {
    return { from: e.from, to: e.to, arrows: "to", color: e.is_critical ? "red" : "gray", width: e.is_critical ? 3 : 1 };
  });
  new vis.Network(document.getElementById("circuit-graph"),
    { nodes: new vis.DataSet(nodes), edges: new vis.DataSet(edges) },
    { layout: { hierarchical: { direction: "LR", sortMethod: "directed" } } });
}).catch(function (err) {
  document.getElementById("summary").textContent = err.message;
});
</script>
`))
