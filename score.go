package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gitea.kood.tech/petrkubec/pet-match/compatibility"
	"github.com/spf13/cobra"
)

// scoreInput is the --file document.
type scoreInput struct {
	Adopter map[string]int `json:"adopter"`
	Pet     map[string]int `json:"pet"`
}

// scoreOutput uses the camelCase names the frontend reads.
type scoreOutput struct {
	MatchScore int  `json:"matchScore"`
	IsMatch    bool `json:"isMatch"`
}

func newScoreCmd() *cobra.Command {
	var adopterJSON, petJSON, file string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an adopter profile against a pet profile",
		Example: `  petmatch score --adopter '{"playful":5,"calm":5,"energetic":5,"friendly":5,"independent":5,"social":5}' \
                --pet '{"playful":8,"calm":8,"energetic":8,"friendly":8,"independent":8,"social":8}'
  petmatch score --file pair.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in scoreInput
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				if err := json.Unmarshal(data, &in); err != nil {
					return fmt.Errorf("parsing %s: %w", file, err)
				}
			case adopterJSON != "" && petJSON != "":
				if err := json.Unmarshal([]byte(adopterJSON), &in.Adopter); err != nil {
					return fmt.Errorf("parsing --adopter: %w", err)
				}
				if err := json.Unmarshal([]byte(petJSON), &in.Pet); err != nil {
					return fmt.Errorf("parsing --pet: %w", err)
				}
			default:
				return errors.New("provide --file or both --adopter and --pet")
			}

			out, err := scorePair(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&adopterJSON, "adopter", "", "adopter profile as a JSON object")
	cmd.Flags().StringVar(&petJSON, "pet", "", "pet profile as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", `JSON file with {"adopter": {...}, "pet": {...}}`)
	return cmd
}

func scorePair(in scoreInput) (scoreOutput, error) {
	adopter, err := compatibility.ProfileFromMap(in.Adopter)
	if err != nil {
		return scoreOutput{}, fmt.Errorf("adopter: %w", err)
	}
	pet, err := compatibility.ProfileFromMap(in.Pet)
	if err != nil {
		return scoreOutput{}, fmt.Errorf("pet: %w", err)
	}
	res, err := compatibility.Evaluate(adopter, pet)
	if err != nil {
		return scoreOutput{}, err
	}
	return scoreOutput{MatchScore: int(res.MatchScore), IsMatch: res.IsMatch}, nil
}
