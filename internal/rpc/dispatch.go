package rpc

import (
	"time"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/rpcenvelope"
	"github.com/yobicash/yobinode/internal/yerrors"
)

func now() codec.Time { return codec.Time(time.Now().Unix()) }

// dispatch decodes frame's envelope, validates it, routes it to
// internal/node by method, and always returns a response frame. Only a
// stream-desynchronizing ReadFrame failure (bad magic, bad status, a
// short read) ever skips a response; a bad KIND is answered directly by
// Server.serve before dispatch is reached, and everything else lands
// here as a logical Error response.
func (s *Server) dispatch(frame *rpcenvelope.Frame) *rpcenvelope.Frame {
	env := &rpcenvelope.Envelope{}
	if err := env.UnmarshalBinary(frame.Payload); err != nil {
		return s.errorFrame(frame.Method, 0, err)
	}
	if err := env.Validate(model.CurrentVersion, now(), frame.Method); err != nil {
		return s.errorFrame(frame.Method, env.Nonce, err)
	}

	handler, ok := handlers[frame.Method]
	if !ok {
		return s.errorFrame(frame.Method, env.Nonce,
			yerrors.New(yerrors.InvalidRequest, "Server.dispatch", "method not implemented"))
	}

	payload, err := handler(s, env.Payload)
	if err != nil {
		return s.errorFrame(frame.Method, env.Nonce, err)
	}
	return s.responseFrame(frame.Method, env.Nonce, payload)
}

// responseFrame wraps payload in a fresh envelope and the outer wire
// frame, echoing the request's nonce (spec.md §5: one request, one
// response, one roundtrip).
func (s *Server) responseFrame(method rpcenvelope.Method, nonce uint32, payload []byte) *rpcenvelope.Frame {
	e := rpcenvelope.New(model.CurrentVersion, now(), nonce, method, payload)
	b, err := e.MarshalBinary()
	if err != nil {
		return s.errorFrame(method, nonce, err)
	}
	return &rpcenvelope.Frame{Status: rpcenvelope.StatusResponse, Method: method, Payload: b}
}

// errorFrame wraps a logical failure into Error{method, description}
// (spec.md §7) rather than closing the connection.
func (s *Server) errorFrame(method rpcenvelope.Method, nonce uint32, err error) *rpcenvelope.Frame {
	msg := rpcenvelope.ErrorPayload{Method: method, Message: err.Error()}
	payload, merr := msg.MarshalBinary()
	if merr != nil {
		payload = nil
	}
	e := rpcenvelope.New(model.CurrentVersion, now(), nonce, rpcenvelope.MethodError, payload)
	b, berr := e.MarshalBinary()
	if berr != nil {
		return &rpcenvelope.Frame{Status: rpcenvelope.StatusResponse, Method: rpcenvelope.MethodError}
	}
	return &rpcenvelope.Frame{Status: rpcenvelope.StatusResponse, Method: rpcenvelope.MethodError, Payload: b}
}

// handlerFunc decodes a request payload, calls into internal/node, and
// returns the marshaled response payload.
type handlerFunc func(s *Server, payload []byte) ([]byte, error)

var handlers = map[rpcenvelope.Method]handlerFunc{
	rpcenvelope.MethodPing:            handlePing,
	rpcenvelope.MethodListPeers:       handleListPeers,
	rpcenvelope.MethodListData:        handleListData,
	rpcenvelope.MethodGetData:         handleGetData,
	rpcenvelope.MethodListTxAncestors: handleListTxAncestors,
	rpcenvelope.MethodGetTx:           handleGetTx,
	rpcenvelope.MethodConfirmTx:       handleConfirmTx,
	rpcenvelope.MethodGetCb:           handleGetCb,
}

func handlePing(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.PingRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return rpcenvelope.PingResponse{}.MarshalBinary()
}

func handleListPeers(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.ListPeersRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	peers, err := s.node.ListPeers(req.Skip, req.Count)
	if err != nil {
		return nil, err
	}
	return rpcenvelope.ListPeersResponse{Peers: peers}.MarshalBinary()
}

func handleListData(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.ListDataRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	data, err := s.node.ListData(req.Skip, req.Count)
	if err != nil {
		return nil, err
	}
	items := make([]rpcenvelope.DataHandle, 0, len(data))
	for _, d := range data {
		items = append(items, rpcenvelope.DataHandle{Checksum: d.Checksum, Tag: d.Tag})
	}
	return rpcenvelope.ListDataResponse{Items: items}.MarshalBinary()
}

func handleGetData(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.GetDataRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	d, err := s.node.GetData(req.Checksum, req.Tag)
	if err != nil {
		return nil, err
	}
	return rpcenvelope.GetDataResponse{Ciphertext: d.Ciphertext}.MarshalBinary()
}

func handleListTxAncestors(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.ListTxAncestorsRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	txs, cbs, err := s.node.ListTransactionAncestors(req.ID)
	if err != nil {
		return nil, err
	}
	txIDs := make([]codec.Digest, 0, len(txs))
	for _, tx := range txs {
		txIDs = append(txIDs, tx.ID)
	}
	cbIDs := make([]codec.Digest, 0, len(cbs))
	for _, cb := range cbs {
		cbIDs = append(cbIDs, cb.ID)
	}
	return rpcenvelope.ListTxAncestorsResponse{TxIDs: txIDs, CbIDs: cbIDs}.MarshalBinary()
}

func handleGetTx(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.GetTxRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	tx, err := s.node.GetTransaction(req.ID)
	if err != nil {
		return nil, err
	}
	return rpcenvelope.GetTxResponse{Tx: tx}.MarshalBinary()
}

func handleConfirmTx(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.ConfirmTxRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	found, cb, err := s.node.ConfirmTransaction(req.ID, req.Wallet, req.Increment, req.FeePK)
	if err != nil {
		return nil, err
	}
	return rpcenvelope.ConfirmTxResponse{Found: found, Coinbase: cb}.MarshalBinary()
}

func handleGetCb(s *Server, payload []byte) ([]byte, error) {
	var req rpcenvelope.GetCbRequest
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	cb, err := s.node.GetCoinbase(req.ID)
	if err != nil {
		return nil, err
	}
	return rpcenvelope.GetCbResponse{Coinbase: cb}.MarshalBinary()
}
