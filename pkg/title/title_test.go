package title

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantNS   Namespace
		wantText string
	}{
		{"user page", "User:Alice", NamespaceUser, "Alice"},
		{"user talk page", "User talk:Alice", NamespaceUserTalk, "Alice"},
		{"subpage", "User:Alice/vector.js", NamespaceUser, "Alice/vector.js"},
		{"underscores", "User:Some_Name", NamespaceUser, "Some Name"},
		{"main namespace", "Main Page", NamespaceMain, "Main Page"},
		{"unknown prefix stays in main", "Template:Foo", NamespaceMain, "Template:Foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Namespace != tt.wantNS || got.Text != tt.wantText {
				t.Errorf("Parse(%q) = {%d %q}, want {%d %q}",
					tt.input, got.Namespace, got.Text, tt.wantNS, tt.wantText)
			}
		})
	}
}

func TestRootAndSubpage(t *testing.T) {
	sub := Parse("User:Alice/Archive/2024")
	if !sub.IsSubpage() {
		t.Error("IsSubpage() = false for a subpage title")
	}
	if sub.RootText() != "Alice" {
		t.Errorf("RootText() = %q, want %q", sub.RootText(), "Alice")
	}

	root := Parse("User:Alice")
	if root.IsSubpage() {
		t.Error("IsSubpage() = true for a root title")
	}
	if root.RootText() != "Alice" {
		t.Errorf("RootText() = %q, want %q", root.RootText(), "Alice")
	}
}

func TestOtherPage(t *testing.T) {
	user := NewUserPage("Alice")
	talk := user.OtherPage()
	if talk.Namespace != NamespaceUserTalk || talk.Text != "Alice" {
		t.Errorf("OtherPage() = %+v, want user talk page", talk)
	}
	if back := talk.OtherPage(); back != user {
		t.Errorf("OtherPage() round trip = %+v, want %+v", back, user)
	}
}

func TestPrefixedTextAndDBKey(t *testing.T) {
	title := Title{Namespace: NamespaceUser, Text: "Some Name"}
	if got := title.PrefixedText(); got != "User:Some Name" {
		t.Errorf("PrefixedText() = %q, want %q", got, "User:Some Name")
	}
	if got := title.DBKey(); got != "Some_Name" {
		t.Errorf("DBKey() = %q, want %q", got, "Some_Name")
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain name", "Alice", true},
		{"name with spaces", "Alice Example", true},
		{"empty", "", false},
		{"slash", "Alice/Bob", false},
		{"brackets", "Alice[1]", false},
		{"pipe", "A|B", false},
		{"at sign", "alice@example", false},
		{"IPv4", "127.0.0.1", false},
		{"IPv6", "2001:db8::1", false},
		{"IPv4 range", "10.0.0.0/16", false},
		{"temporary account", "~2024-12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidUsername(tt.input); got != tt.want {
				t.Errorf("IsValidUsername(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"alice", "Alice"},
		{"Some_Name", "Some Name"},
		{"  Alice ", "Alice"},
		{"127.0.0.1", ""},
		{"", ""},
		{"~2024-12345", ""},
	}

	for _, tt := range tests {
		if got := NormalizeUsername(tt.input); got != tt.want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
