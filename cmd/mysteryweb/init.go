package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mysteryweb/internal/config"
	"mysteryweb/internal/entity"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new mysteryweb project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			if err := runInit(projectName); err != nil {
				return err
			}
			cmd.Printf("Wrote %s and %s.\n", config.DefaultPath, sampleDatasetPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

const sampleDatasetPath = "dataset.yaml"

func runInit(projectName string) error {
	for _, path := range []string{config.DefaultPath, sampleDatasetPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nsource:\n  kind: file\n  path: %s\n\nlayout:\n  direction: LR\n  node_spacing: 100\n  rank_spacing: 300\n\nbuild:\n  include_orphans: false\n  integrity: true\n  max_depth: 10\n  max_nodes: 250\n", projectName, sampleDatasetPath)
	if err := os.WriteFile(config.DefaultPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", config.DefaultPath, err)
	}

	contents, err := yaml.Marshal(sampleDataset())
	if err != nil {
		return fmt.Errorf("encoding sample dataset: %w", err)
	}
	if err := os.WriteFile(sampleDatasetPath, contents, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", sampleDatasetPath, err)
	}
	return nil
}

func sampleDataset() *entity.Dataset {
	return &entity.Dataset{
		Characters: []entity.Character{
			{ID: "char-victoria", Name: "Victoria Kingsley", Tier: "Core", Logline: "The host with too many secrets", OwnedElementIDs: []string{"el-diary"}, EventIDs: []string{"ev-party"}},
			{ID: "char-derek", Name: "Derek Thorn", Tier: "Secondary", Logline: "The business partner", OwnedElementIDs: []string{"el-safe"}, Connections: []string{"char-victoria"}},
		},
		Elements: []entity.Element{
			{ID: "el-diary", Name: "Victoria's Diary", BasicType: "Prop", Status: "Done", OwnerID: "char-victoria", RequiredForPuzzleIDs: []string{"pz-safe"}, TimelineEventID: "ev-party"},
			{ID: "el-safe", Name: "Wall Safe", BasicType: "Container", Status: "Done", OwnerID: "char-derek", ContentIDs: []string{"el-contract"}},
			{ID: "el-contract", Name: "Forged Contract", BasicType: "Memory Token", Status: "In development", ContainerID: "el-safe", RewardedByPuzzleIDs: []string{"pz-safe"}},
		},
		Puzzles: []entity.Puzzle{
			{ID: "pz-safe", Name: "Open the Safe", Timing: "Act 1", PuzzleElementIDs: []string{"el-diary"}, RewardIDs: []string{"el-contract"}},
		},
		Timeline: []entity.TimelineEvent{
			{ID: "ev-party", Name: "The Party", Date: "1987-06-12", CharactersInvolvedIDs: []string{"char-victoria", "char-derek"}},
		},
	}
}
