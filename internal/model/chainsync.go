package model

import "time"

// ChainSync carries the correlation between an off-chain record and its
// on-chain counterpart. The local record is always authoritative; these
// fields only describe how far the ledger write has progressed.
//
// BlockchainID is the identifier assigned by the contract (unique when
// present, null until the first successful submission). TxHash is the hash of
// the transaction that created or last touched the on-chain record.
type ChainSync struct {
	BlockchainID *int64 `gorm:"uniqueIndex" json:"blockchain_id"`
	TxHash       string `gorm:"type:varchar(66)" json:"tx_hash,omitempty"`

	// Reconciliation marker. Set when the remote leg of a write failed after
	// the local write committed; cleared once a retry succeeds. An external
	// sweep queries records with ReconcilePending=true and re-drives them.
	ReconcilePending bool       `gorm:"index" json:"reconcile_pending"`
	ReconcileCause   string     `gorm:"type:varchar(255)" json:"reconcile_cause,omitempty"`
	ReconcileAt      *time.Time `json:"reconcile_at,omitempty"`
}

// Synced reports whether the record has a confirmed on-chain counterpart.
func (c *ChainSync) Synced() bool {
	return c.BlockchainID != nil && !c.ReconcilePending
}

// MarkPending records a failed remote write for later reconciliation.
func (c *ChainSync) MarkPending(cause string) {
	now := time.Now()
	c.ReconcilePending = true
	c.ReconcileCause = cause
	c.ReconcileAt = &now
}

// MarkSynced stores the chain correlation and clears any pending marker.
func (c *ChainSync) MarkSynced(blockchainID *int64, txHash string) {
	if blockchainID != nil {
		c.BlockchainID = blockchainID
	}
	if txHash != "" {
		c.TxHash = txHash
	}
	c.ReconcilePending = false
	c.ReconcileCause = ""
	c.ReconcileAt = nil
}
