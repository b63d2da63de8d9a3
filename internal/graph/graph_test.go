package graph_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markpath/internal/graph"
)

func startView(t *testing.T) (*graph.View, string) {
	t.Helper()

	view := graph.New()
	uri, err := view.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { view.Close() })
	return view, uri
}

func wsURL(t *testing.T, pageURL string) string {
	t.Helper()

	parsed, err := url.Parse(pageURL)
	require.NoError(t, err)
	return "ws://" + parsed.Host + "/ws"
}

func TestServesPage(t *testing.T) {
	_, uri := startView(t)

	resp, err := http.Get(uri)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestInitAndRefresh(t *testing.T) {
	view, uri := startView(t)

	view.Publish(graph.Data{
		Nodes: []graph.Node{{ID: 1, Label: "Alpha"}},
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(t, uri), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var init struct {
		Op    string      `json:"op"`
		Graph *graph.Data `json:"graph"`
	}
	require.NoError(t, conn.ReadJSON(&init))
	assert.Equal(t, "init", init.Op)
	require.NotNil(t, init.Graph)
	require.Len(t, init.Graph.Nodes, 1)
	assert.Equal(t, "Alpha", init.Graph.Nodes[0].Label)

	view.Publish(graph.Data{
		Nodes: []graph.Node{
			{ID: 1, Label: "Alpha"},
			{ID: 2, Label: "beta.md", Missing: true},
		},
		Edges: []graph.Edge{{Source: 1, Target: 2}},
	})

	var refresh struct {
		Op    string      `json:"op"`
		Graph *graph.Data `json:"graph"`
	}
	require.NoError(t, conn.ReadJSON(&refresh))
	assert.Equal(t, "refresh", refresh.Op)
	require.NotNil(t, refresh.Graph)
	require.Len(t, refresh.Graph.Nodes, 2)
	assert.True(t, refresh.Graph.Nodes[1].Missing)
	require.Len(t, refresh.Graph.Edges, 1)
	assert.Equal(t, 1, refresh.Graph.Edges[0].Source)
	assert.Equal(t, 2, refresh.Graph.Edges[0].Target)
}
