// Package gitrepo provides a read-only storage.Repository over a git repository.
//
// A dataset is the tree of one commit (refs/heads/main by default, HEAD as fallback):
//
//	group.toml
//	ledgers/
//	    39C3/
//	        .ledger.toml                              ledger descriptor (marker)
//	        019b5b4f-8077-7c4b-89d4-9380c444ee9d.toml one file per transaction
//
// Ledger descriptors are read eagerly; transaction files only when a ledger is listed.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"

	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/storage"
	"github.com/mmynk/borrowchecker/internal/storage/record"
)

// Ensure Repository implements storage.Repository
var _ storage.Repository = (*Repository)(nil)

// DefaultRef is the reference read unless Options.Ref says otherwise.
const DefaultRef = "refs/heads/main"

// Options configures where the dataset lives inside the repository.
type Options struct {
	// Ref is the preferred reference; HEAD is used when it does not resolve.
	Ref string

	// LedgersDir is the tree holding one subtree per ledger.
	LedgersDir string

	// GroupFile is the path of the group record.
	GroupFile string
}

func (o Options) withDefaults() Options {
	if o.Ref == "" {
		o.Ref = DefaultRef
	}
	if o.LedgersDir == "" {
		o.LedgersDir = "ledgers"
	}
	if o.GroupFile == "" {
		o.GroupFile = record.GroupFile
	}
	return o
}

// snapshot is one resolved commit plus the ledger index built from it.
type snapshot struct {
	commit plumbing.Hash
	root   *object.Tree
	index  map[uuid.UUID]string // ledger ID -> tree path
}

// Repository reads a dataset from the commit a reference points to.
type Repository struct {
	repo *git.Repository
	opts Options

	refreshMu sync.Mutex // serializes Refresh

	mu   sync.RWMutex // guards snap
	snap *snapshot
}

// Open opens the git repository at path and resolves its current snapshot.
func Open(ctx context.Context, repoPath string, opts Options) (*Repository, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open repository %s: %v", models.ErrBackend, repoPath, err)
	}
	r := &Repository{repo: repo, opts: opts.withDefaults()}
	if _, err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	slog.Info("Git repository opened", "path", repoPath, "ref", r.opts.Ref, "commit", r.current().commit.String())
	return r, nil
}

// Close is a no-op; go-git keeps no open handles for a plain repository.
func (r *Repository) Close() error {
	return nil
}

// Commit returns the hash of the commit currently being read.
func (r *Repository) Commit() string {
	return r.current().commit.String()
}

func (r *Repository) current() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Refresh re-resolves the reference and rebuilds the ledger index.
// The new snapshot replaces the old one in a single swap.
func (r *Repository) Refresh(ctx context.Context) (storage.RefreshResult, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	commit, root, err := r.resolve()
	if err != nil {
		return storage.RefreshResult{}, err
	}
	_, index, err := r.scanLedgers(ctx, root)
	if err != nil {
		return storage.RefreshResult{}, err
	}

	r.mu.Lock()
	changed := r.snap == nil || r.snap.commit != commit
	r.snap = &snapshot{commit: commit, root: root, index: index}
	r.mu.Unlock()

	slog.Debug("Git repository refreshed", "commit", commit.String(), "changed", changed, "ledgers", len(index))
	return storage.RefreshResult{HasChanges: changed}, nil
}

// resolve returns the commit Options.Ref points to, falling back to HEAD.
func (r *Repository) resolve() (plumbing.Hash, *object.Tree, error) {
	ref, err := r.repo.Reference(plumbing.ReferenceName(r.opts.Ref), true)
	if err != nil {
		head, headErr := r.repo.Head()
		if headErr != nil {
			return plumbing.ZeroHash, nil, fmt.Errorf("%w: neither %s nor HEAD resolve: %v", models.ErrNotFound, r.opts.Ref, headErr)
		}
		ref = head
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return plumbing.ZeroHash, nil, fmt.Errorf("%w: failed to read commit %s: %v", models.ErrBackend, ref.Hash(), err)
	}
	root, err := commit.Tree()
	if err != nil {
		return plumbing.ZeroHash, nil, fmt.Errorf("%w: failed to read tree of %s: %v", models.ErrBackend, commit.Hash, err)
	}
	return commit.Hash, root, nil
}

// LoadGroup reads the group record from the current snapshot.
func (r *Repository) LoadGroup(ctx context.Context) (*models.Group, error) {
	snap := r.current()
	data, err := readFile(snap.root, r.opts.GroupFile)
	if err != nil {
		return nil, err
	}
	return record.DecodeGroup(data)
}

// ListLedgers scans the ledgers tree of the current snapshot.
// A subtree is a ledger iff it holds a parseable .ledger.toml; hidden entries are skipped.
func (r *Repository) ListLedgers(ctx context.Context) ([]models.Ledger, error) {
	snap := r.current()
	ledgers, index, err := r.scanLedgers(ctx, snap.root)
	if err != nil {
		return nil, err
	}

	// Install the index unless a Refresh moved to another commit meanwhile.
	r.mu.Lock()
	if r.snap.commit == snap.commit {
		r.snap = &snapshot{commit: snap.commit, root: snap.root, index: index}
	}
	r.mu.Unlock()

	return ledgers, nil
}

func (r *Repository) scanLedgers(ctx context.Context, root *object.Tree) ([]models.Ledger, map[uuid.UUID]string, error) {
	index := make(map[uuid.UUID]string)
	ledgersTree, err := root.Tree(r.opts.LedgersDir)
	if errors.Is(err, object.ErrDirectoryNotFound) {
		slog.Debug("No ledgers tree in snapshot", "path", r.opts.LedgersDir)
		return nil, index, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrBackend, r.opts.LedgersDir, err)
	}

	var ledgers []models.Ledger
	for _, entry := range ledgersTree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if strings.HasPrefix(entry.Name, ".") {
			continue
		}
		if entry.Mode != filemode.Dir {
			slog.Debug("Skipping non-directory in ledgers tree", "name", entry.Name)
			continue
		}

		ledgerPath := path.Join(r.opts.LedgersDir, entry.Name)
		sub, err := ledgersTree.Tree(entry.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrBackend, ledgerPath, err)
		}
		data, err := readFile(sub, record.LedgerMarker)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		ledger, err := record.DecodeLedger(data)
		if err != nil {
			return nil, nil, fmt.Errorf("ledger %q: %w", entry.Name, err)
		}
		if other, dup := index[ledger.ID]; dup {
			return nil, nil, fmt.Errorf("%w: ledger id %s used by both %s and %s", models.ErrParse, ledger.ID, other, ledgerPath)
		}
		index[ledger.ID] = ledgerPath
		ledgers = append(ledgers, *ledger)
	}
	return ledgers, index, nil
}

// ListTransactions parses every non-hidden file of the ledger's tree.
// Files that cannot be read or parsed are logged and skipped.
func (r *Repository) ListTransactions(ctx context.Context, ledgerID uuid.UUID) ([]models.Transaction, error) {
	snap := r.current()
	ledgerPath, ok := snap.index[ledgerID]
	if !ok {
		return nil, fmt.Errorf("%w: ledger %s", models.ErrNotFound, ledgerID)
	}
	tree, err := snap.root.Tree(ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrBackend, ledgerPath, err)
	}

	var txns []models.Transaction
	for i := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := &tree.Entries[i]
		if strings.HasPrefix(entry.Name, ".") {
			continue
		}
		if !entry.Mode.IsFile() {
			slog.Debug("Skipping non-file entry", "ledger", ledgerPath, "name", entry.Name)
			continue
		}
		file, err := tree.TreeEntryFile(entry)
		if err != nil {
			slog.Warn("Failed to read transaction file", "ledger", ledgerPath, "name", entry.Name, "error", err)
			continue
		}
		contents, err := file.Contents()
		if err != nil {
			slog.Warn("Failed to read transaction file", "ledger", ledgerPath, "name", entry.Name, "error", err)
			continue
		}
		txn, err := record.DecodeTransactionFile(entry.Name, []byte(contents))
		if err != nil {
			slog.Warn("Skipping unparseable transaction", "ledger", ledgerPath, "name", entry.Name, "error", err)
			continue
		}
		txns = append(txns, *txn)
	}
	return txns, nil
}

func readFile(tree *object.Tree, name string) ([]byte, error) {
	file, err := tree.File(name)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrBackend, name, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrBackend, name, err)
	}
	return []byte(contents), nil
}

func readOnly(op string) error {
	return fmt.Errorf("%w: %s: git repository is read-only", models.ErrUnsupported, op)
}

// SaveGroup is not supported.
func (r *Repository) SaveGroup(ctx context.Context, group *models.Group) error {
	return readOnly("save group")
}

// CreateLedger is not supported.
func (r *Repository) CreateLedger(ctx context.Context, ledger models.Ledger) (uuid.UUID, error) {
	return uuid.Nil, readOnly("create ledger")
}

// UpdateLedger is not supported.
func (r *Repository) UpdateLedger(ctx context.Context, ledger models.Ledger) error {
	return readOnly("update ledger")
}

// DeleteLedger is not supported.
func (r *Repository) DeleteLedger(ctx context.Context, ledgerID uuid.UUID) error {
	return readOnly("delete ledger")
}

// CreateTransaction is not supported.
func (r *Repository) CreateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) (uuid.UUID, error) {
	return uuid.Nil, readOnly("create transaction")
}

// UpdateTransaction is not supported.
func (r *Repository) UpdateTransaction(ctx context.Context, ledgerID uuid.UUID, txn models.Transaction) error {
	return readOnly("update transaction")
}

// DeleteTransaction is not supported.
func (r *Repository) DeleteTransaction(ctx context.Context, ledgerID, txnID uuid.UUID) error {
	return readOnly("delete transaction")
}
