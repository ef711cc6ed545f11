package main

import (
	"fmt"
	"io"
	"strings"
)

type reportTotals struct {
	Analyzed      int
	WithFood      int
	TotalCalories int
}

func summarize(results []*Result) reportTotals {
	totals := reportTotals{Analyzed: len(results)}
	for _, r := range results {
		totals.TotalCalories += r.Calories
		if r.HasFood() {
			totals.WithFood++
		}
	}
	return totals
}

func reportTitle(provider string) string {
	switch provider {
	case providerGemini:
		return "GEMINI 2.0 FLASH CALORIE ANALYSIS REPORT"
	case providerOpenAI:
		return "OPENAI CALORIE ANALYSIS REPORT"
	}
	return "CALORIE ANALYSIS REPORT"
}

// the provider shared by all results, or "" when they are mixed
func commonProvider(results []*Result) string {
	if len(results) == 0 {
		return ""
	}
	provider := results[0].Provider
	for _, r := range results[1:] {
		if r.Provider != provider {
			return ""
		}
	}
	return provider
}

// one line per image as it is analyzed, with the item breakdown
func printResultLine(w io.Writer, r *Result) {
	if !r.HasFood() {
		if r.Status == statusError {
			fmt.Fprintf(w, "✗ %s: %s\n", r.Filename, r.Error)
			return
		}
		fmt.Fprintf(w, "✓ %s: No food detected (0 calories)\n", r.Filename)
		return
	}

	fmt.Fprintf(w, "✓ %s: %d calories\n", r.Filename, r.Calories)
	fmt.Fprintf(w, "  Detected items: %s\n", strings.Join(r.FoodItems, ", "))
	for _, item := range r.Items {
		fmt.Fprintf(w, "    - %s: %d calories\n", item.Name, item.Calories)
	}
}

func PrintReport(w io.Writer, provider string, results []*Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display")
		return
	}

	title := reportTitle(provider)
	totals := summarize(results)
	rule := strings.Repeat("=", len(title)+12)

	fmt.Fprintf(w, "\n===== %s =====\n", title)
	fmt.Fprintf(w, "Total screenshots analyzed: %d\n", totals.Analyzed)
	fmt.Fprintf(w, "Screenshots containing food: %d\n", totals.WithFood)
	fmt.Fprintf(w, "Estimated total calories: %d\n", totals.TotalCalories)
	fmt.Fprintln(w, rule)

	if totals.WithFood == 0 {
		return
	}

	fmt.Fprintln(w, "\nDetailed breakdown:")
	for _, r := range results {
		if !r.HasFood() {
			continue
		}
		fmt.Fprintf(w, "- %s: %d calories\n", r.Filename, r.Calories)
		fmt.Fprintf(w, "  Detected items: %s\n", strings.Join(r.FoodItems, ", "))
		if provider != providerSimulated && r.Provider != providerSimulated && len(r.Items) > 0 {
			fmt.Fprintln(w, "  Item details:")
			for _, item := range r.Items {
				fmt.Fprintf(w, "    - %s: %d calories\n", item.Name, item.Calories)
			}
			fmt.Fprintln(w)
		}
	}

	if provider == providerSimulated {
		fmt.Fprintln(w, "\nNOTE: This analysis is simulated for demonstration purposes.")
		fmt.Fprintln(w, "A real implementation would use actual AI models trained on food recognition.")
	}
}

// the shorter block printed after each periodic analysis
func PrintSummary(w io.Writer, results []*Result) {
	if len(results) == 0 {
		return
	}
	totals := summarize(results)
	fmt.Fprintln(w, "\n===== CALORIE ANALYSIS SUMMARY =====")
	fmt.Fprintf(w, "Total screenshots analyzed: %d\n", totals.Analyzed)
	fmt.Fprintf(w, "Screenshots containing food: %d\n", totals.WithFood)
	fmt.Fprintf(w, "Estimated total calories: %d\n", totals.TotalCalories)
	fmt.Fprintln(w, "====================================")
}
