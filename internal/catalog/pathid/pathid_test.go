package pathid

import "testing"

func TestBase36RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 35, 36, 1700000000, 18446744073709551615}
	for _, id := range cases {
		enc := Base36Encode(id)
		got := Base36Decode(enc)
		if got != id {
			t.Errorf("Base36Decode(Base36Encode(%d)) = %d, want %d", id, got, id)
		}
	}
}

func TestBase36DecodeToleratesUppercase(t *testing.T) {
	if Base36Decode("S44WE8") != Base36Decode("s44we8") {
		t.Error("decode should be case-insensitive")
	}
}

func TestExternalDirNameIsOneIndexedDecimal(t *testing.T) {
	if ExternalDirName(1) != "externaldir1" {
		t.Errorf("got %q", ExternalDirName(1))
	}
	if ExternalDirName(12) != "externaldir12" {
		t.Errorf("got %q", ExternalDirName(12))
	}
}

func TestBackupDir(t *testing.T) {
	got := BackupDir("/data", "pg1", 1700000000, "database")
	want := "/data/backups/pg1/s44we8/database"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
