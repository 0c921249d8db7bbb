package password

import "testing"

func benchHasher(b *testing.B) *Hasher {
	b.Helper()

	hasher, err := NewHasher(Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		b.Fatal(err)
	}
	return hasher
}

func BenchmarkHasherHash(b *testing.B) {
	hasher := benchHasher(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := hasher.Hash("correct-horse-battery"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHasherVerify(b *testing.B) {
	hasher := benchHasher(b)
	encoded, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ok, err := hasher.Verify("correct-horse-battery", encoded)
		if err != nil || !ok {
			b.Fatalf("verify: ok=%v err=%v", ok, err)
		}
	}
}
