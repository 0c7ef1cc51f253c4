package goCognito

import (
	"context"
	"errors"
	"testing"
)

func TestProviderRegistry(t *testing.T) {
	engine := newTestEngine(t, newStubUserPool(), nil)
	reg := engine.Providers()

	src, err := reg.ForService("cognito")
	if err != nil {
		t.Fatalf("ForService failed: %v", err)
	}
	if src != IdentitySource(engine.IdentityProvider()) {
		t.Fatal("expected the engine identity provider")
	}
	if src.GetIdentity(context.Background()).IsAuthenticated() {
		t.Fatal("expected anonymous identity")
	}

	if err := reg.AddProvider("cognito", engine.IdentityProvider()); !errors.Is(err, ErrProviderDuplicate) {
		t.Fatalf("expected ErrProviderDuplicate, got %v", err)
	}
	if _, err := reg.ForService("saml"); !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
	if err := reg.AddProvider("", engine.IdentityProvider()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	if err := reg.AddProvider("backup", engine.IdentityProvider()); err != nil {
		t.Fatalf("AddProvider failed: %v", err)
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "backup" || names[1] != "cognito" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestProviderNameFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Identity.ProviderName = "aws"
	engine := newTestEngine(t, newStubUserPool(), func(b *Builder) { b.WithConfig(cfg) })

	if _, err := engine.Providers().ForService("aws"); err != nil {
		t.Fatalf("expected provider under configured name: %v", err)
	}
}
