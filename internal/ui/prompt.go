package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompt is the interactive terminal prompter used for every user
// choice: search results, sources, languages, mangas and folder rename
// requests.
type Prompt struct{}

func NewPrompt() *Prompt {
	return &Prompt{}
}

// Select shows a single-choice picker and returns the chosen index.
func (p *Prompt) Select(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}

	return idx, nil
}

// SelectMulti shows a numbered list and reads a comma-separated set of
// 1-based choices; entering the SELECT ALL number picks everything. It
// keeps asking until the input parses.
func (p *Prompt) SelectMulti(label string, items []string) ([]int, error) {
	fmt.Println(label + ":")
	all := len(items) + 1
	width := len(strconv.Itoa(all))
	for i, it := range items {
		fmt.Printf("%*d. %s\n", width, i+1, it)
	}
	fmt.Printf("%*d. [SELECT ALL]\n", width, all)

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Choose [1-%d], comma separated", all),
		Validate: func(in string) error {
			idxs, err := parseChoices(in, all)
			if err != nil {
				return err
			}
			if len(idxs) == 0 {
				return fmt.Errorf("nothing selected")
			}
			return nil
		},
	}

	in, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	idxs, _ := parseChoices(in, all)
	for _, i := range idxs {
		if i == all-1 {
			out := make([]int, len(items))
			for j := range items {
				out[j] = j
			}
			return out, nil
		}
	}

	return idxs, nil
}

// Input reads a free-form line, re-prompting while empty.
func (p *Prompt) Input(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(in string) error {
			if strings.TrimSpace(in) == "" {
				return fmt.Errorf("empty input")
			}
			return nil
		},
	}

	out, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}

	return strings.TrimSpace(out), nil
}

func parseChoices(in string, n int) ([]int, error) {
	fields := strings.FieldsFunc(in, func(r rune) bool {
		return r == ',' || r == ' '
	})

	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		if v < 1 || v > n {
			return nil, fmt.Errorf("choice %d out of range", v)
		}
		out = append(out, v-1)
	}

	return out, nil
}
