package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedOptions struct {
	Adopters    int
	Foundations int
	PetsPerOrg  int
	Seed        int64
	Truncate    bool
	Password    string
	NoTraitRate float64 // proportion of adopters seeded without a personality profile
}

func (o seedOptions) validate() error {
	if o.Adopters < 1 || o.Foundations < 1 {
		return errors.New("--adopters and --foundations must be at least 1")
	}
	if o.PetsPerOrg < 0 {
		return errors.New("--pets must not be negative")
	}
	if o.NoTraitRate < 0 || o.NoTraitRate > 1 {
		return errors.New("--no-trait-rate must be in range 0..1")
	}
	if strings.TrimSpace(o.Password) == "" {
		return errors.New("--password must not be empty")
	}
	return nil
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var so seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with deterministic demo adopters, foundations and pets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := so.validate(); err != nil {
				return err
			}
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			db, err := openDB(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := applyMigrations(db); err != nil {
				return err
			}
			return runSeed(ctx, db, so, log)
		},
	}
	cmd.Flags().IntVar(&so.Adopters, "adopters", 50, "Number of adopters to create")
	cmd.Flags().IntVar(&so.Foundations, "foundations", 5, "Number of foundations to create")
	cmd.Flags().IntVar(&so.PetsPerOrg, "pets", 10, "Pets per foundation")
	cmd.Flags().Int64Var(&so.Seed, "seed", 42, "RNG seed (deterministic)")
	cmd.Flags().BoolVar(&so.Truncate, "truncate", false, "TRUNCATE target tables before running")
	cmd.Flags().StringVar(&so.Password, "password", "test1234", "Password assigned to all users")
	cmd.Flags().Float64Var(&so.NoTraitRate, "no-trait-rate", 0.1, "Proportion of adopters without a personality profile (0..1)")
	return cmd
}

func runSeed(ctx context.Context, db *sql.DB, so seedOptions, log *zap.Logger) error {
	r := rand.New(rand.NewSource(so.Seed))

	pwHash, err := bcrypt.GenerateFromPassword([]byte(so.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt: %w", err)
	}

	// One transaction so a broken constraint leaves nothing behind
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if so.Truncate {
			if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE matches, pets, users CASCADE`); err != nil {
				return fmt.Errorf("truncate: %w", err)
			}
			log.Info("truncated matches, pets, users")
		}

		foundations, err := insertSeedUsers(ctx, tx, r, UserTypeFoundation, so.Foundations, string(pwHash), 0)
		if err != nil {
			return err
		}
		adopters, err := insertSeedUsers(ctx, tx, r, UserTypeAdopter, so.Adopters, string(pwHash), so.NoTraitRate)
		if err != nil {
			return err
		}
		log.Info("inserted users", zap.Int("foundations", len(foundations)), zap.Int("adopters", len(adopters)))

		pets, err := insertSeedPets(ctx, tx, r, foundations, so.PetsPerOrg)
		if err != nil {
			return err
		}
		log.Info("inserted pets", zap.Int("pets", pets))
		return nil
	})
}

func insertSeedUsers(ctx context.Context, tx *sql.Tx, r *rand.Rand, userType string, n int, pwHash string, noTraitRate float64) ([]uuid.UUID, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO users (id, email, name, age, user_type, personality_traits, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			personality_traits = EXCLUDED.personality_traits,
			password_hash = EXCLUDED.password_hash
		RETURNING id`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		// Stable emails so demo logins survive re-seeding
		email := fmt.Sprintf("%s%d@petmatch.test", userType, i+1)
		name := seedPersonName(r)
		if userType == UserTypeFoundation {
			name = seedFoundationName(r, i)
		}

		var traits any // NULL unless set
		if userType == UserTypeAdopter && r.Float64() >= noTraitRate {
			raw, err := json.Marshal(randomTraits(r))
			if err != nil {
				return nil, err
			}
			traits = string(raw)
		}

		var id uuid.UUID
		if err := stmt.QueryRowContext(ctx, uuid.New(), email, name, 18+r.Intn(50), userType, traits, pwHash).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert %s %d (%s): %w", userType, i, email, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func insertSeedPets(ctx context.Context, tx *sql.Tx, r *rand.Rand, foundations []uuid.UUID, perOrg int) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pets (id, foundation_id, name, breed, age, personality_traits, images, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, fid := range foundations {
		for i := 0; i < perOrg; i++ {
			traits, err := json.Marshal(randomTraits(r))
			if err != nil {
				return count, err
			}
			status := PetStatusAvailable
			if r.Float64() < 0.1 {
				status = PetStatusAdopted
			}
			name := seedPetNames[r.Intn(len(seedPetNames))]
			breed := seedBreeds[r.Intn(len(seedBreeds))]
			images := fmt.Sprintf(`["https://images.petmatch.test/%s.jpg"]`, strings.ToLower(name))

			if _, err := stmt.ExecContext(ctx, uuid.New(), fid, name, breed, r.Intn(15), string(traits), images, status); err != nil {
				return count, fmt.Errorf("insert pet %s for %s: %w", name, fid, err)
			}
			count++
		}
	}
	return count, nil
}

func randomTraits(r *rand.Rand) compatibility.Profile {
	n := func() int { return compatibility.MinIntensity + r.Intn(compatibility.MaxIntensity) }
	return compatibility.Profile{
		Playful:     n(),
		Calm:        n(),
		Energetic:   n(),
		Friendly:    n(),
		Independent: n(),
		Social:      n(),
	}
}

var (
	seedPetNames = []string{"Luna", "Max", "Coco", "Rocky", "Nala", "Toby", "Kira", "Simba", "Lola", "Bruno", "Maya", "Thor"}
	seedBreeds   = []string{"Mestizo", "Labrador", "Beagle", "Siamés", "Criollo", "Golden Retriever", "Persa", "Border Collie"}
)

func seedPersonName(r *rand.Rand) string {
	first := []string{"Ana", "Carlos", "Lucía", "Mateo", "Sofía", "Diego", "Valentina", "Andrés", "Camila", "Julián"}[r.Intn(10)]
	last := []string{"García", "Rodríguez", "Martínez", "López", "Gómez", "Díaz", "Torres", "Ramírez"}[r.Intn(8)]
	return first + " " + last
}

func seedFoundationName(r *rand.Rand, i int) string {
	kind := []string{"Refugio", "Fundación", "Hogar", "Rescate"}[r.Intn(4)]
	return fmt.Sprintf("%s Patitas %d", kind, i+1)
}
