package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// printYAML выводит значение в YAML с именами полей JSON-контракта
// backend (camelCase). JSON является подмножеством YAML, поэтому
// документ разбирается в yaml.Node без потери порядка ключей.
func printYAML(out io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("сериализация результата: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("преобразование результата: %w", err)
	}
	resetStyle(&node)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("вывод результата: %w", err)
	}
	return enc.Close()
}

// resetStyle убирает flow-стиль и кавычки, унаследованные от JSON.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// parseID разбирает положительный id заказа из аргумента команды.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный id заказа: %q", s)
	}
	return id, nil
}

// parseIDs разбирает список id заказов.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
