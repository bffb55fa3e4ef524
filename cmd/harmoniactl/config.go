package main

import (
	"encoding/json"
	"fmt"
	"os"

	harmoniaapi "harmonia/pkg/harmonia"
)

func loadRunRequestFromConfig(path string) (harmoniaapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return harmoniaapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return harmoniaapi.RunRequest{}, err
	}

	var req harmoniaapi.RunRequest
	if v, ok := asString(raw["melody"]); ok {
		req.MelodyName = v
	}
	if v, ok := asString(raw["vocabulary"]); ok {
		req.VocabularyName = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = &v
	}
	if v, ok := asInt(raw["elite_count"]); ok {
		req.EliteCount = &v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asString(raw["selection"]); ok {
		req.Selection = v
	}
	if v, ok := asString(raw["crossover"]); ok {
		req.CrossoverKind = v
	}
	if v, ok := asInt(raw["plateau_generations"]); ok {
		req.PlateauGenerations = v
	}
	if v, ok := asInt(raw["slots_per_bar"]); ok {
		req.SlotsPerBar = v
	}
	if v, ok := asBool(raw["export_score"]); ok {
		req.ExportScore = v
	}
	if v, ok := asBool(raw["strict_weights"]); ok {
		req.StrictWeights = v
	}

	if weightsMap, ok := raw["weights"].(map[string]any); ok {
		weights := make(map[string]float64, len(weightsMap))
		for name, value := range weightsMap {
			weight, ok := asFloat64(value)
			if !ok {
				return harmoniaapi.RunRequest{}, fmt.Errorf("weight %q is not a number", name)
			}
			weights[name] = weight
		}
		req.Weights = weights
	}

	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (harmoniaapi.RunRequest, error) {
	if configPath == "" {
		return harmoniaapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return harmoniaapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *harmoniaapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "melody":
			req.MelodyName = v.(string)
		case "vocabulary":
			req.VocabularyName = v.(string)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "mutation-rate":
			rate := v.(float64)
			req.MutationRate = &rate
		case "elites":
			count := v.(int)
			req.EliteCount = &count
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "selection":
			req.Selection = v.(string)
		case "crossover":
			req.CrossoverKind = v.(string)
		case "plateau-gens":
			req.PlateauGenerations = v.(int)
		case "slots-per-bar":
			req.SlotsPerBar = v.(int)
		case "export-score":
			req.ExportScore = v.(bool)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
