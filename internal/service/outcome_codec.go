package service

import "strings"

// ── 成果符号编解码 ──
//
// 存储/传输格式："K_W01, K_W02"（逗号 + 空格拼接）
// 内部一律按集合处理：去空白、去空项、重复项折叠（保留首次出现位置）

// SymbolSeparator 编码时使用的分隔符
const SymbolSeparator = ", "

// SymbolSet 有序的符号集合，顺序仅用于展示
type SymbolSet []string

// DecodeSymbols 解析符号字符串，永不失败
func DecodeSymbols(s string) SymbolSet {
	if strings.TrimSpace(s) == "" {
		return SymbolSet{}
	}
	parts := strings.Split(s, ",")
	out := make(SymbolSet, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// EncodeSymbols 按调用方给定顺序拼接
func EncodeSymbols(tokens []string) string {
	return strings.Join(tokens, SymbolSeparator)
}

// ToggleSymbol 切换某符号的选中状态：存在则移除，不存在则追加到末尾
// 空白符号不改变集合，仅返回规范化后的编码
func ToggleSymbol(s, symbol string) string {
	set := DecodeSymbols(s)
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return EncodeSymbols(set)
	}
	if set.Contains(symbol) {
		return EncodeSymbols(set.Without(symbol))
	}
	return EncodeSymbols(append(set, symbol))
}

// Contains 是否包含
func (s SymbolSet) Contains(symbol string) bool {
	for _, t := range s {
		if t == symbol {
			return true
		}
	}
	return false
}

// Without 返回移除 symbol 后的新集合
func (s SymbolSet) Without(symbol string) SymbolSet {
	out := make(SymbolSet, 0, len(s))
	for _, t := range s {
		if t != symbol {
			out = append(out, t)
		}
	}
	return out
}

// Equal 集合相等（与顺序无关）
func (s SymbolSet) Equal(other SymbolSet) bool {
	a := make(map[string]struct{}, len(s))
	for _, t := range s {
		a[t] = struct{}{}
	}
	b := make(map[string]struct{}, len(other))
	for _, t := range other {
		b[t] = struct{}{}
	}
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
