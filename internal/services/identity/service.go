package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hwgpg/internal/crypto"
	"hwgpg/internal/domain"
)

// Deps are the collaborators of the provisioner.
type Deps struct {
	Store     domain.IdentityStore
	Lock      domain.Locker
	KeyGen    domain.KeyGenerator
	Keyring   domain.Keyring
	Confirmer domain.Confirmer
	Sessions  domain.SessionService
	Logger    logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service provisions identities.
type Service struct {
	deps        Deps
	lockTimeout time.Duration
	log         logrus.FieldLogger
}

// New returns an identity Service. lockTimeout bounds the wait for the
// identity lock.
func New(deps Deps, lockTimeout time.Duration) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		deps:        deps,
		lockTimeout: lockTimeout,
		log:         deps.Logger.WithField("component", "provision"),
	}
}

// Provision creates a new identity and then launches a session for it,
// returning the session's exit status.
//
// Steps:
//  1. Validate the request and check the installed gpg.
//  2. Take the identity lock and confirm replacing a non-empty directory.
//  3. Recreate the identity directory.
//  4. Generate the key on the device and save its certificate.
//  5. Import the certificate and mark it trusted.
//  6. Write the manifest, release the lock and launch a session.
//
// The first failing step aborts provisioning. A failure after step 3
// leaves the identity directory empty again. Steps 4 and 5 fail with a
// ProvisionError carrying the collaborator's exit status.
func (s *Service) Provision(ctx context.Context, req domain.ProvisionRequest) (int, error) {
	user := domain.UserID(strings.TrimSpace(req.UserID.String()))
	if user == "" {
		return 0, domain.ErrInvalidUserID
	}
	curve, err := domain.ParseCurve(req.Curve.String())
	if err != nil {
		return 0, err
	}
	if err := s.deps.Keyring.CheckVersion(ctx); err != nil {
		return 0, err
	}

	if err := s.deps.Lock.Acquire(ctx, s.lockTimeout); err != nil {
		return 0, err
	}
	locked := true
	unlock := func() {
		if !locked {
			return
		}
		locked = false
		if err := s.deps.Lock.Release(); err != nil {
			s.log.WithError(err).Warn("releasing identity lock")
		}
	}
	defer unlock()

	if err := s.confirmReplace(req.Confirmed); err != nil {
		return 0, err
	}
	if err := s.deps.Store.Recreate(); err != nil {
		return 0, fmt.Errorf("recreating identity directory: %w", err)
	}
	provisioned := false
	defer func() {
		if !provisioned {
			s.rollback()
		}
	}()

	created := req.Created
	if created.IsZero() {
		created = s.deps.Now()
	}
	entry := s.log.WithFields(logrus.Fields{"user_id": user.String(), "curve": curve.String()})

	armored, err := s.deps.KeyGen.Create(ctx, user, curve, created)
	if err != nil {
		return 0, domain.NewProvisionError(domain.ErrKeyGen, err)
	}
	cert, err := crypto.ParseCertificate(armored)
	if err != nil {
		return 0, domain.NewProvisionError(domain.ErrKeyGen, err)
	}
	if !cert.HasUserID(user) {
		entry.WithField("user_ids", cert.UserIDs).Warn("certificate does not carry the requested user ID")
	}
	path, err := s.deps.Store.SaveCertificate(armored)
	if err != nil {
		return 0, fmt.Errorf("saving certificate: %w", err)
	}

	if err := s.deps.Keyring.Import(ctx, path); err != nil {
		return 0, domain.NewProvisionError(domain.ErrImport, err)
	}
	if err := s.deps.Keyring.EditTrust(ctx, user); err != nil {
		return 0, domain.NewProvisionError(domain.ErrTrustEdit, err)
	}

	manifest := domain.Manifest{
		UserID:            user,
		Curve:             curve,
		KeyCreatedUnix:    created.Unix(),
		Fingerprint:       cert.Fingerprint,
		CertificateDigest: crypto.Digest(armored),
		ProvisionedUTC:    s.deps.Now().UTC().Unix(),
	}
	if err := s.deps.Store.SaveManifest(manifest); err != nil {
		return 0, fmt.Errorf("saving identity manifest: %w", err)
	}
	provisioned = true
	entry.WithField("fingerprint", cert.Fingerprint.String()).Info("identity provisioned")

	// The session takes the lock itself.
	unlock()
	return s.deps.Sessions.Launch(ctx)
}

// rollback returns the identity directory to its freshly created, empty
// state after a failed step. The step's error is what the caller sees.
func (s *Service) rollback() {
	if err := s.deps.Store.Recreate(); err != nil {
		s.log.WithError(err).Error("resetting identity directory after failed provisioning")
		return
	}
	s.log.WithField("home", s.deps.Store.Dir()).Info("identity directory reset after failed provisioning")
}

// confirmReplace asks before an existing, non-empty identity directory is
// destroyed.
func (s *Service) confirmReplace(confirmed bool) error {
	exists, err := s.deps.Store.Exists()
	if err != nil {
		return fmt.Errorf("inspecting identity directory: %w", err)
	}
	if !exists || confirmed {
		return nil
	}
	if s.deps.Confirmer == nil {
		return domain.ErrNotConfirmed
	}
	ok, err := s.deps.Confirmer.Confirm(fmt.Sprintf("%s already holds an identity. Replace it?", s.deps.Store.Dir()))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotConfirmed, err)
	}
	if !ok {
		return domain.ErrNotConfirmed
	}
	return nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
