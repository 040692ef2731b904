// Package visualizer renders normalized graph results as self-contained
// vis-network HTML documents.
package visualizer

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"github.com/graphlens/graphlens/pkg/graph"
)

// The HTML template for the vis-network rendering.
const visNetworkTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Ownership Graph</title>
    <script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
    <style>
        body { margin: 0; font-family: Arial, sans-serif; }
        #graph-container {
            width: 100%;
            height: 100vh;
            border: 1px solid #ddd;
        }
        .summary {
            position: absolute;
            top: 10px;
            left: 10px;
            background-color: rgba(255,255,255,0.85);
            padding: 10px;
            border-radius: 5px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
    </style>
</head>
<body>
    <div id="graph-container"></div>
    <div class="summary">
        <h3>Ownership Graph</h3>
        <p>Nodes: {{.NodeCount}}, Edges: {{.EdgeCount}}</p>
    </div>

    <script>
        const nodes = new vis.DataSet({{.Nodes}});
        const edges = new vis.DataSet({{.Edges}});

        const options = {
            nodes: {
                shape: 'dot',
                size: 16,
                font: { size: 14 },
                borderWidth: 2,
                shadow: true
            },
            edges: {
                color: { inherit: 'from' },
                smooth: { type: 'continuous' },
                arrows: { to: { enabled: true, scaleFactor: 0.5 } }
            },
            physics: {
                enabled: true,
                stabilization: { enabled: true, iterations: 200 }
            },
            interaction: {
                hover: true,
                tooltipDelay: 200,
                zoomView: true,
                dragView: true
            }
        };

        const container = document.getElementById('graph-container');
        new vis.Network(container, { nodes: nodes, edges: edges }, options);
    </script>
</body>
</html>
`

var labelColors = map[string]string{
	graph.LabelCompany:     "#4e79a7",
	graph.LabelPerson:      "#f28e2b",
	graph.LabelStockholder: "#59a14f",
	graph.LabelLegalEntity: "#b07aa1",
}

const defaultNodeColor = "#9c9c9c"

type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
	Color string `json:"color"`
	Title string `json:"title"`
}

type visEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Label string  `json:"label"`
	Width float64 `json:"width"`
}

// GenerateHTML renders a GraphData as a standalone vis-network page.
// Node color follows the primary label; edge width scales with the
// shareholding ratio.
func GenerateHTML(data graph.GraphData) (string, error) {
	nodes := make([]visNode, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		color, ok := labelColors[n.Label]
		if !ok {
			color = defaultNodeColor
		}
		display, _ := n.Properties[graph.PropDisplayName].(string)
		if display == "" {
			display = n.ID
		}
		nodes = append(nodes, visNode{
			ID:    n.ID,
			Label: display,
			Group: n.Label,
			Color: color,
			Title: n.Label + ": " + display,
		})
	}

	edges := make([]visEdge, 0, len(data.Edges))
	for _, e := range data.Edges {
		width := 1.0
		if ratio, ok := e.Properties[graph.PropStockRatio].(float64); ok && ratio > 0 {
			width = 1 + ratio/25 // 100% ownership draws at width 5
		}
		edges = append(edges, visEdge{
			From:  e.Source,
			To:    e.Target,
			Label: e.Label,
			Width: width,
		})
	}

	nodeJSON, err := json.Marshal(nodes)
	if err != nil {
		return "", err
	}
	edgeJSON, err := json.Marshal(edges)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("visnetwork").Parse(visNetworkTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Nodes     template.JS
		Edges     template.JS
		NodeCount int
		EdgeCount int
	}{
		Nodes:     template.JS(nodeJSON),
		Edges:     template.JS(edgeJSON),
		NodeCount: len(data.Nodes),
		EdgeCount: len(data.Edges),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML renders the graph and writes it to path, creating parent
// directories as needed.
func WriteHTML(data graph.GraphData, path string) error {
	html, err := GenerateHTML(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(html), 0644)
}
