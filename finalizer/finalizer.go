// Package finalizer turns stored elections into published tally results. For
// every option ciphertext it produces the decrypted group element, a proof of
// correct decryption and the recovered count, then persists the whole outcome
// through the storage layer.
//
// Committee decryption keys are registered in memory only. They are dropped
// as soon as the election is finalized and never reach storage or logs.
package finalizer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/tallyproof/crypto/dlog"
	"github.com/vocdoni/tallyproof/crypto/ecc"
	"github.com/vocdoni/tallyproof/crypto/ecc/curves"
	"github.com/vocdoni/tallyproof/crypto/elgamal"
	"github.com/vocdoni/tallyproof/log"
	"github.com/vocdoni/tallyproof/storage"
	"github.com/vocdoni/tallyproof/types"
)

// Finalizer is responsible for finalizing elections.
type Finalizer struct {
	stg        *storage.Storage
	tables     *dlog.TableCache
	OndemandCh chan types.HexBytes

	keysLock sync.RWMutex
	keys     map[string]*big.Int // electionID hex → committee decryption key

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Finalizer instance. If tables is nil, a private table
// cache of the default size is created.
func New(stg *storage.Storage, tables *dlog.TableCache) *Finalizer {
	if tables == nil {
		var err error
		tables, err = dlog.NewTableCache(dlog.DefaultTableCacheSize)
		if err != nil {
			log.Fatalf("failed to create discrete log table cache: %v", err)
		}
	}
	// We'll create the context in Start() now to avoid premature cancellation
	return &Finalizer{
		stg:        stg,
		tables:     tables,
		OndemandCh: make(chan types.HexBytes, 10), // Use buffered channel to prevent blocking
		keys:       make(map[string]*big.Int),
	}
}

// RegisterKey registers the committee decryption key for an election. The
// election must already be stored, and the key must match its public key.
// The key is kept in memory only and is dropped once the election is
// finalized.
func (f *Finalizer) RegisterKey(electionID types.HexBytes, privateKey *big.Int) error {
	if privateKey == nil || privateKey.Sign() <= 0 {
		return fmt.Errorf("invalid decryption key")
	}
	election, err := f.stg.Election(electionID)
	if err != nil {
		return fmt.Errorf("could not retrieve election %s: %w", electionID.String(), err)
	}
	curve := curves.New(election.CurveType)
	publicKey := curve.New()
	if err := publicKey.Unmarshal(election.PublicKey); err != nil {
		return fmt.Errorf("invalid public key for election %s: %w", electionID.String(), err)
	}
	expected := curve.New()
	expected.ScalarBaseMult(privateKey)
	if !expected.Equal(publicKey) {
		return fmt.Errorf("key does not match the public key of election %s", electionID.String())
	}

	f.keysLock.Lock()
	defer f.keysLock.Unlock()
	f.keys[electionID.String()] = new(big.Int).Set(privateKey)

	log.Debugw("registered decryption key", "electionID", electionID.String())
	return nil
}

// Start starts the finalizer. It will listen for elections to finalize on the
// OndemandCh channel. It will also periodically look for stored elections
// that have a registered key but no results yet. The monitorInterval is the
// interval of that check; if it is 0, the periodic check is disabled.
func (f *Finalizer) Start(ctx context.Context, monitorInterval time.Duration) {
	f.ctx, f.cancel = context.WithCancel(ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case electionID := <-f.OndemandCh:
				if err := f.finalize(electionID); err != nil {
					log.Errorw(err, fmt.Sprintf("finalizing election %s", electionID.String()))
				}
			case <-f.ctx.Done():
				return
			}
		}
	}()

	if monitorInterval > 0 {
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			ticker := time.NewTicker(monitorInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					f.finalizePending()
				case <-f.ctx.Done():
					return
				}
			}
		}()
	}

	log.Infow("finalizer started successfully")
}

// Close gracefully shuts down the finalizer and waits for all goroutines to
// exit. This method should be called before closing the storage to avoid
// panics. It also wipes every registered decryption key.
func (f *Finalizer) Close() {
	if f.cancel == nil {
		return
	}

	// Signal all goroutines to stop
	f.cancel()
	f.cancel = nil

	// Create a channel for draining signals
	done := make(chan struct{})

	// Drain the OndemandCh in a separate goroutine with a timeout
	go func() {
		for {
			select {
			case <-f.OndemandCh:
				// Discard pending items
			case <-time.After(100 * time.Millisecond):
				// If no message received in 100ms, assume channel is drained
				close(done)
				return
			}
		}
	}()

	// Wait for the channel to be drained or timeout after 2 seconds
	select {
	case <-done:
		// Channel drained successfully
	case <-time.After(2 * time.Second):
		log.Warnw("timeout while draining finalizer channel")
	}

	// Wait for all goroutines to exit with a timeout
	waitCh := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		log.Infow("finalizer closed successfully")
	case <-time.After(5 * time.Second):
		log.Warnw("some finalizer goroutines did not exit cleanly")
	}

	f.keysLock.Lock()
	f.keys = make(map[string]*big.Int)
	f.keysLock.Unlock()
}

// finalizePending enqueues every stored election that has no results yet and
// a registered decryption key.
func (f *Finalizer) finalizePending() {
	ids, err := f.stg.PendingElections()
	if err != nil {
		log.Errorw(err, "could not list pending elections")
		return
	}

	for _, electionID := range ids {
		if f.key(electionID) == nil {
			log.Debugw("skipping election without a registered key", "electionID", electionID.String())
			continue
		}
		log.Debugw("found election to finalize", "electionID", electionID.String())
		select {
		case f.OndemandCh <- electionID:
		case <-f.ctx.Done():
			return
		}
	}
}

// finalize finalizes an election: it decrypts the aggregated ciphertext of
// every option with the registered committee key, builds and self-verifies a
// decryption proof per option, recovers the counts and stores the results. A
// finalized election is skipped, so duplicate requests are harmless.
func (f *Finalizer) finalize(electionID types.HexBytes) error {
	log.Debugw("finalizing election", "electionID", electionID.String())

	if f.stg.HasResults(electionID) {
		log.Debugw("election already finalized", "electionID", electionID.String())
		return nil
	}

	election, err := f.stg.Election(electionID)
	if err != nil {
		return fmt.Errorf("could not retrieve election %s: %w", electionID.String(), err)
	}
	privateKey := f.key(electionID)
	if privateKey == nil {
		return fmt.Errorf("no decryption key registered for election %s", electionID.String())
	}

	// The curve type was validated when the election was stored
	curve := curves.New(election.CurveType)
	publicKey := curve.New()
	if err := publicKey.Unmarshal(election.PublicKey); err != nil {
		return fmt.Errorf("invalid public key for election %s: %w", electionID.String(), err)
	}

	// Decrypt every option and prove the decryption
	startTime := time.Now()
	messages := make([]ecc.Point, len(election.Options))
	proofs := make([]types.HexBytes, len(election.Options))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, rawCiphertext := range election.Options {
		i, rawCiphertext := i, rawCiphertext
		g.Go(func() error {
			ct := elgamal.NewCiphertext(curve)
			if err := ct.Deserialize(rawCiphertext); err != nil {
				return fmt.Errorf("option %d: %w", i, err)
			}
			msg, err := elgamal.DecryptPoint(privateKey, ct)
			if err != nil {
				return fmt.Errorf("decrypt option %d: %w", i, err)
			}
			proof, err := elgamal.BuildDecryptionProof(nil, privateKey, publicKey, ct)
			if err != nil {
				return fmt.Errorf("prove option %d: %w", i, err)
			}
			// nothing leaves the finalizer without passing verification
			if err := proof.Verify(publicKey, ct, msg); err != nil {
				return fmt.Errorf("self-verify option %d: %w", i, err)
			}
			rawProof, err := proof.Bytes()
			if err != nil {
				return fmt.Errorf("serialize proof for option %d: %w", i, err)
			}
			messages[i] = msg
			proofs[i] = rawProof
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("decrypt election %s: %w", electionID.String(), err)
	}
	log.Debugw("decrypted option ciphertexts", "electionID", electionID.String(),
		"options", len(messages), "duration", time.Since(startTime).String())

	// Recover the counts from the decrypted group elements
	table, err := f.tables.Table(curve, election.MaxValue, dlog.DefaultBalance)
	if err != nil {
		return fmt.Errorf("discrete log table for election %s: %w", electionID.String(), err)
	}
	results := &types.TallyResults{
		ElectionID:  electionID,
		Counts:      make([]*types.BigInt, len(messages)),
		Messages:    types.SliceOf(messages, func(p ecc.Point) types.HexBytes { return p.Marshal() }),
		Proofs:      proofs,
		FinalizedAt: time.Now(),
	}
	for i, res := range table.SolveBatch(messages, election.MaxValue) {
		if res.Err != nil {
			return fmt.Errorf("recover count for option %d of election %s: %w",
				i, electionID.String(), res.Err)
		}
		results.Counts[i] = new(types.BigInt).SetUint64(res.Count)
	}

	if err := f.stg.SetResults(results); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			// another worker finalized the election first
			return nil
		}
		return fmt.Errorf("could not store results for election %s: %w", electionID.String(), err)
	}

	// The committee key is not needed anymore
	f.forgetKey(electionID)

	log.Infow("finalized election", "electionID", electionID.String(),
		"counts", results.Counts, "duration", time.Since(startTime).String())
	return nil
}

// WaitUntilFinalized waits until the election is finalized and returns its
// tally results. If the given context carries no deadline, a default timeout
// of 60 seconds is applied.
func (f *Finalizer) WaitUntilFinalized(ctx context.Context, electionID types.HexBytes) (*types.TallyResults, error) {
	if f.ctx == nil {
		return nil, fmt.Errorf("finalizer is not started")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Debugw("waiting for election to be finalized", "electionID", electionID.String())

	for {
		if f.stg.HasResults(electionID) {
			return f.stg.Results(electionID)
		}

		select {
		case <-ticker.C:

		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for election %s to be finalized: %w",
				electionID.String(), ctx.Err())

		case <-f.ctx.Done():
			return nil, fmt.Errorf("finalizer is shutting down while waiting for election %s",
				electionID.String())
		}
	}
}

func (f *Finalizer) key(electionID types.HexBytes) *big.Int {
	f.keysLock.RLock()
	defer f.keysLock.RUnlock()
	return f.keys[electionID.String()]
}

func (f *Finalizer) forgetKey(electionID types.HexBytes) {
	f.keysLock.Lock()
	defer f.keysLock.Unlock()
	delete(f.keys, electionID.String())
}
