package search

import "sort"

// suggestEntry is a completed phrase reachable in the trie. count tracks how
// many indexed documents currently contribute the phrase.
type suggestEntry struct {
	display string
	count   int
}

type trieNode struct {
	children map[rune]*trieNode
	entry    *suggestEntry
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// trie is a prefix structure over lower-cased phrases used for autocomplete.
// Not safe for concurrent use; the owning Index serializes access.
type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

// insert adjusts the usage count of a phrase by delta, creating or removing
// the entry as the count crosses zero. Matching is case-insensitive; the
// first inserted casing is kept for display.
func (t *trie) insert(phrase string, delta int) {
	key := Tokenize(phrase)
	if len(key) == 0 {
		return
	}
	node := t.root
	for _, term := range key {
		for _, r := range term {
			child, ok := node.children[r]
			if !ok {
				if delta <= 0 {
					return
				}
				child = newTrieNode()
				node.children[r] = child
			}
			node = child
		}
		// single space between normalized terms
		child, ok := node.children[' ']
		if !ok {
			if delta <= 0 {
				return
			}
			child = newTrieNode()
			node.children[' '] = child
		}
		node = child
	}

	if node.entry == nil {
		if delta <= 0 {
			return
		}
		node.entry = &suggestEntry{display: phrase}
	}
	node.entry.count += delta
	if node.entry.count <= 0 {
		node.entry = nil
	}
}

// suggest returns up to limit phrases starting with prefix, ordered by
// descending usage count, then lexicographically for a stable order.
func (t *trie) suggest(prefix string, limit int) []string {
	key := Tokenize(prefix)
	if len(key) == 0 || limit <= 0 {
		return nil
	}

	node := t.root
	for i, term := range key {
		for _, r := range term {
			child, ok := node.children[r]
			if !ok {
				return nil
			}
			node = child
		}
		// inner terms must be complete words; the final term may be partial
		if i < len(key)-1 {
			child, ok := node.children[' ']
			if !ok {
				return nil
			}
			node = child
		}
	}

	var entries []suggestEntry
	collect(node, &entries)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].display < entries[j].display
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.display
	}
	return out
}

func collect(node *trieNode, acc *[]suggestEntry) {
	if node.entry != nil {
		*acc = append(*acc, *node.entry)
	}
	for _, child := range node.children {
		collect(child, acc)
	}
}
