package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
)

// clusterResponse mirrors the body of GET /cluster.
type clusterResponse struct {
	Result clusterStatus `json:"result"`
	Status any           `json:"status"`
}

type clusterStatus struct {
	Status                string              `json:"status"`
	PeerID                uint64              `json:"peer_id"`
	Peers                 map[string]peerInfo `json:"peers"`
	RaftInfo              raftInfo            `json:"raft_info"`
	ConsensusThreadStatus struct {
		Status string `json:"consensus_thread_status"`
	} `json:"consensus_thread_status"`
}

type peerInfo struct {
	URI string `json:"uri"`
}

type raftInfo struct {
	Term              uint64  `json:"term"`
	Commit            uint64  `json:"commit"`
	PendingOperations uint64  `json:"pending_operations"`
	Leader            *uint64 `json:"leader"`
	Role              string  `json:"role"`
}

// GetClusterTopology returns the peers known to the answering peer together with its raft state.
func (c *QdrantClient) GetClusterTopology(ctx context.Context) (*cluster.Topology, error) {
	if !c.started {
		return nil, ErrNotConnected
	}

	var resp clusterResponse
	if err := c.getJSON(ctx, "/cluster", &resp); err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get cluster status: %w", err)
	}
	return toTopology(resp.Result)
}

func toTopology(st clusterStatus) (*cluster.Topology, error) {
	if st.Status != "enabled" {
		return nil, ErrClusterDisabled
	}

	topo := &cluster.Topology{
		LocalPeerID: cluster.PeerID(st.PeerID),
		Consensus: cluster.ConsensusStatus{
			Role:              st.RaftInfo.Role,
			Term:              st.RaftInfo.Term,
			Commit:            st.RaftInfo.Commit,
			PendingOperations: st.RaftInfo.PendingOperations,
			ThreadStatus:      st.ConsensusThreadStatus.Status,
		},
	}
	if st.RaftInfo.Leader != nil {
		topo.Consensus.Leader = cluster.PeerID(*st.RaftInfo.Leader)
	}

	for key, p := range st.Peers {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] invalid peer id %q in cluster status: %w", key, err)
		}
		topo.Peers = append(topo.Peers, cluster.Peer{ID: cluster.PeerID(id), URI: p.URI})
	}
	sort.Slice(topo.Peers, func(i, j int) bool { return topo.Peers[i].ID < topo.Peers[j].ID })
	return topo, nil
}

// getJSON issues a GET against the REST API and decodes the JSON body into out.
func (c *QdrantClient) getJSON(ctx context.Context, path string, out any) error {
	url := c.cfg.restBaseURL() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.ApiKey != "" {
		req.Header.Set("api-key", c.cfg.ApiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("http %d for %s: %s", resp.StatusCode, url, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
