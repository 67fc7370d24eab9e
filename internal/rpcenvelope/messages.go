package rpcenvelope

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
)

// PingRequest/PingResponse carry no data; a successful round trip is
// the liveness signal.
type PingRequest struct{}

func (PingRequest) MarshalBinary() ([]byte, error) { return nil, nil }
func (r *PingRequest) UnmarshalBinary(b []byte) error {
	return newReader("PingRequest.UnmarshalBinary", b).finish()
}

type PingResponse struct{}

func (PingResponse) MarshalBinary() ([]byte, error) { return nil, nil }
func (r *PingResponse) UnmarshalBinary(b []byte) error {
	return newReader("PingResponse.UnmarshalBinary", b).finish()
}

// ListPeersRequest/Response page through the by-address peer index.
type ListPeersRequest struct {
	Skip, Count uint32
}

func (r ListPeersRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(r.Skip)
	w.uint32(r.Count)
	return w.Bytes(), nil
}

func (r *ListPeersRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("ListPeersRequest.UnmarshalBinary", b)
	skip, err := rd.uint32()
	if err != nil {
		return err
	}
	count, err := rd.uint32()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Skip, r.Count = skip, count
	return nil
}

type ListPeersResponse struct {
	Peers []*model.Peer
}

func (r ListPeersResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(uint32(len(r.Peers)))
	for _, p := range r.Peers {
		if err := w.marshal(p); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (r *ListPeersResponse) UnmarshalBinary(b []byte) error {
	rd := newReader("ListPeersResponse.UnmarshalBinary", b)
	n, err := rd.uint32()
	if err != nil {
		return err
	}
	peers := make([]*model.Peer, 0, n)
	for i := uint32(0); i < n; i++ {
		host, err := rd.host()
		if err != nil {
			return err
		}
		first, err := rd.time()
		if err != nil {
			return err
		}
		last, err := rd.time()
		if err != nil {
			return err
		}
		attempts, err := rd.uint32()
		if err != nil {
			return err
		}
		peers = append(peers, &model.Peer{Host: host, FirstSeen: first, LastSeen: last, Attempts: attempts})
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Peers = peers
	return nil
}

// ListDataRequest/Response page through stored Data handles; the
// ciphertext itself is fetched separately via GetData.
type ListDataRequest struct {
	Skip, Count uint32
}

func (r ListDataRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(r.Skip)
	w.uint32(r.Count)
	return w.Bytes(), nil
}

func (r *ListDataRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("ListDataRequest.UnmarshalBinary", b)
	skip, err := rd.uint32()
	if err != nil {
		return err
	}
	count, err := rd.uint32()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Skip, r.Count = skip, count
	return nil
}

type DataHandle struct {
	Checksum codec.Digest
	Tag      codec.MAC
}

type ListDataResponse struct {
	Items []DataHandle
}

func (r ListDataResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(uint32(len(r.Items)))
	for _, it := range r.Items {
		w.bytes(it.Checksum[:])
		w.bytes(it.Tag[:])
	}
	return w.Bytes(), nil
}

func (r *ListDataResponse) UnmarshalBinary(b []byte) error {
	rd := newReader("ListDataResponse.UnmarshalBinary", b)
	n, err := rd.uint32()
	if err != nil {
		return err
	}
	items := make([]DataHandle, 0, n)
	for i := uint32(0); i < n; i++ {
		cs, err := rd.digest()
		if err != nil {
			return err
		}
		tag, err := rd.mac()
		if err != nil {
			return err
		}
		items = append(items, DataHandle{Checksum: cs, Tag: tag})
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Items = items
	return nil
}

type GetDataRequest struct {
	Checksum codec.Digest
	Tag      codec.MAC
}

func (r GetDataRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(r.Checksum[:])
	w.bytes(r.Tag[:])
	return w.Bytes(), nil
}

func (r *GetDataRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("GetDataRequest.UnmarshalBinary", b)
	cs, err := rd.digest()
	if err != nil {
		return err
	}
	tag, err := rd.mac()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Checksum, r.Tag = cs, tag
	return nil
}

type GetDataResponse struct {
	Ciphertext []byte
}

func (r GetDataResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.blob(r.Ciphertext)
	return w.Bytes(), nil
}

func (r *GetDataResponse) UnmarshalBinary(b []byte) error {
	rd := newReader("GetDataResponse.UnmarshalBinary", b)
	ct, err := rd.blob()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Ciphertext = ct
	return nil
}

type ListTxAncestorsRequest struct {
	ID codec.Digest
}

func (r ListTxAncestorsRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(r.ID[:])
	return w.Bytes(), nil
}

func (r *ListTxAncestorsRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("ListTxAncestorsRequest.UnmarshalBinary", b)
	id, err := rd.digest()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.ID = id
	return nil
}

type ListTxAncestorsResponse struct {
	TxIDs []codec.Digest
	CbIDs []codec.Digest
}

func (r ListTxAncestorsResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(uint32(len(r.TxIDs)))
	for _, id := range r.TxIDs {
		w.bytes(id[:])
	}
	w.uint32(uint32(len(r.CbIDs)))
	for _, id := range r.CbIDs {
		w.bytes(id[:])
	}
	return w.Bytes(), nil
}

func (r *ListTxAncestorsResponse) UnmarshalBinary(b []byte) error {
	rd := newReader("ListTxAncestorsResponse.UnmarshalBinary", b)
	nt, err := rd.uint32()
	if err != nil {
		return err
	}
	txIDs := make([]codec.Digest, 0, nt)
	for i := uint32(0); i < nt; i++ {
		id, err := rd.digest()
		if err != nil {
			return err
		}
		txIDs = append(txIDs, id)
	}
	nc, err := rd.uint32()
	if err != nil {
		return err
	}
	cbIDs := make([]codec.Digest, 0, nc)
	for i := uint32(0); i < nc; i++ {
		id, err := rd.digest()
		if err != nil {
			return err
		}
		cbIDs = append(cbIDs, id)
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.TxIDs, r.CbIDs = txIDs, cbIDs
	return nil
}

type GetTxRequest struct {
	ID codec.Digest
}

func (r GetTxRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(r.ID[:])
	return w.Bytes(), nil
}

func (r *GetTxRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("GetTxRequest.UnmarshalBinary", b)
	id, err := rd.digest()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.ID = id
	return nil
}

type GetTxResponse struct {
	Tx *model.Transaction
}

func (r GetTxResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	if err := w.marshal(r.Tx); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (r *GetTxResponse) UnmarshalBinary(b []byte) error {
	tx := &model.Transaction{}
	if err := tx.UnmarshalBinary(b); err != nil {
		return err
	}
	r.Tx = tx
	return nil
}

type ConfirmTxRequest struct {
	ID        codec.Digest
	Wallet    string
	Increment uint32
	FeePK     codec.PublicKey
}

func (r ConfirmTxRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(r.ID[:])
	w.str(r.Wallet)
	w.uint32(r.Increment)
	w.bytes(r.FeePK[:])
	return w.Bytes(), nil
}

func (r *ConfirmTxRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("ConfirmTxRequest.UnmarshalBinary", b)
	id, err := rd.digest()
	if err != nil {
		return err
	}
	wallet, err := rd.str()
	if err != nil {
		return err
	}
	incr, err := rd.uint32()
	if err != nil {
		return err
	}
	feePK, err := rd.publicKey()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.ID, r.Wallet, r.Increment, r.FeePK = id, wallet, incr, feePK
	return nil
}

type ConfirmTxResponse struct {
	Found    bool
	Coinbase *model.Coinbase
}

func (r ConfirmTxResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	if r.Found {
		w.byte(1)
		if err := w.marshal(r.Coinbase); err != nil {
			return nil, err
		}
	} else {
		w.byte(0)
	}
	return w.Bytes(), nil
}

func (r *ConfirmTxResponse) UnmarshalBinary(b []byte) error {
	rd := newReader("ConfirmTxResponse.UnmarshalBinary", b)
	found, err := rd.byte()
	if err != nil {
		return err
	}
	r.Found = found != 0
	if r.Found {
		cb := &model.Coinbase{}
		if err := cb.UnmarshalBinary(b[1:]); err != nil {
			return err
		}
		r.Coinbase = cb
		return nil
	}
	return rd.finish()
}

type GetCbRequest struct {
	ID codec.Digest
}

func (r GetCbRequest) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(r.ID[:])
	return w.Bytes(), nil
}

func (r *GetCbRequest) UnmarshalBinary(b []byte) error {
	rd := newReader("GetCbRequest.UnmarshalBinary", b)
	id, err := rd.digest()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.ID = id
	return nil
}

type GetCbResponse struct {
	Coinbase *model.Coinbase
}

func (r GetCbResponse) MarshalBinary() ([]byte, error) {
	w := &writer{}
	if err := w.marshal(r.Coinbase); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (r *GetCbResponse) UnmarshalBinary(b []byte) error {
	cb := &model.Coinbase{}
	if err := cb.UnmarshalBinary(b); err != nil {
		return err
	}
	r.Coinbase = cb
	return nil
}

// ErrorPayload is the response body for Error{method, message}
// (spec.md §4.13/§7).
type ErrorPayload struct {
	Method  Method
	Message string
}

func (r ErrorPayload) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(uint32(r.Method))
	w.str(r.Message)
	return w.Bytes(), nil
}

func (r *ErrorPayload) UnmarshalBinary(b []byte) error {
	rd := newReader("ErrorPayload.UnmarshalBinary", b)
	method, err := rd.uint32()
	if err != nil {
		return err
	}
	msg, err := rd.str()
	if err != nil {
		return err
	}
	if err := rd.finish(); err != nil {
		return err
	}
	r.Method, r.Message = Method(method), msg
	return nil
}
