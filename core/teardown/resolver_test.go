package teardown

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func TestResolver_ownedURLs(t *testing.T) {
	r := NewResolver(nil, nil, []string{"lh3.googleusercontent.com", "Avatars.GITHUBusercontent.com"})

	tests := []struct {
		name string
		atts []school.Attachment
		want []string
	}{
		{name: "nil attachments"},
		{name: "empty url skipped", atts: []school.Attachment{{Name: "x"}}},
		{
			name: "app-hosted kept",
			atts: []school.Attachment{{URL: "https://cdn.darasa.test/darasa/a.png"}},
			want: []string{"https://cdn.darasa.test/darasa/a.png"},
		},
		{
			name: "provider-hosted skipped",
			atts: []school.Attachment{{URL: "https://lh3.googleusercontent.com/a/b.png"}},
		},
		{
			name: "provider host match is case-insensitive",
			atts: []school.Attachment{{URL: "https://AVATARS.githubUSERcontent.com/u/1"}},
		},
		{
			name: "unparseable url kept for the cleaner to reject",
			atts: []school.Attachment{{URL: "::notaurl"}},
			want: []string{"::notaurl"},
		},
		{
			name: "mixed",
			atts: []school.Attachment{
				{URL: "https://cdn.darasa.test/darasa/a.png"},
				{URL: ""},
				{URL: "https://lh3.googleusercontent.com/a/b.png"},
				{URL: "https://cdn.darasa.test/darasa/c.pdf"},
			},
			want: []string{"https://cdn.darasa.test/darasa/a.png", "https://cdn.darasa.test/darasa/c.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ownedURLs(tt.atts)
			if len(got) != len(tt.want) {
				t.Fatalf("ownedURLs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ownedURLs()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolver_Resolve_unknownKind(t *testing.T) {
	r := NewResolver(nil, nil, nil)
	if _, err := r.Resolve(context.Background(), RootKind("planet"), "x"); errors.Cause(err) != errUnknownRootKind {
		t.Errorf("Resolve() error = %v, want %v", err, errUnknownRootKind)
	}
}

func TestResolver_Resolve_stageOrder(t *testing.T) {
	env := setup(t)
	g := seedUserGraph(t, env)
	r := env.svc.resolver
	ctx := context.Background()

	t.Run("user root", func(t *testing.T) {
		stages, err := r.Resolve(ctx, RootUser, g.doomed.ID)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := []string{
			StageChatMessages, StageComments, StagePrivateComments, StageOwnedStreams,
			StageEnrollments, StageOwnedClassrooms, StageNotes, StageNotifications,
			StageRoleRequest, StageAvatarBlob, StageRoot,
		}
		if len(stages) != len(want) {
			t.Fatalf("got %d stages, want %d", len(stages), len(want))
		}
		for i, name := range want {
			if stages[i].Name != name {
				t.Errorf("stages[%d] = %s, want %s", i, stages[i].Name, name)
			}
		}
		// the root stage must be last and delete exactly the root row
		root := stages[len(stages)-1]
		if len(root.Steps) != 1 || root.Steps[0].EntityID != g.doomed.ID {
			t.Errorf("root stage steps = %+v", root.Steps)
		}
		// the avatar-blob stage is blob-only
		for _, stage := range stages {
			if stage.Name == StageAvatarBlob {
				if len(stage.Steps) != 1 || stage.Steps[0].delete != nil {
					t.Errorf("avatar stage = %+v, want one blob-only step", stage.Steps)
				}
			}
		}
	})

	t.Run("classroom root", func(t *testing.T) {
		stages, err := r.Resolve(ctx, RootClassroom, g.bio.ID)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := []string{StageChatMessages, StageStreams, StageEnrollments, StageNotifications, StageRoot}
		if len(stages) != len(want) {
			t.Fatalf("got %d stages, want %d", len(stages), len(want))
		}
		for i, name := range want {
			if stages[i].Name != name {
				t.Errorf("stages[%d] = %s, want %s", i, stages[i].Name, name)
			}
		}
	})

	t.Run("gone root yields bare root stage", func(t *testing.T) {
		stages, err := r.Resolve(ctx, RootUser, "gone")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(stages) != 1 || stages[0].Name != StageRoot {
			t.Errorf("stages = %+v, want a single root stage", stages)
		}
	})
}

func TestResolver_Resolve_ownClassroomStreamNotDuplicated(t *testing.T) {
	env := setup(t)
	solo := testutil.CreateUser(t, env.usrRepo, "Solo", "soloteach", "solo@test.cd", "pwd", []string{user.RoleTeacher}, true)
	cls := env.db.AddClassroom(school.Classroom{Name: "Physics", Code: "PHY-1", TeacherID: solo.ID})
	attURL := "https://cdn.darasa.test/darasa/streams/gravity.pdf"
	env.db.AddStream(school.Stream{
		ClassID: cls.ID, UserID: solo.ID, Kind: school.KindMaterial, Title: "Gravity",
		Attachments: []school.Attachment{{Name: "pdf", URL: attURL}},
	})
	r := env.svc.resolver

	stages, err := r.Resolve(context.Background(), RootUser, solo.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// a stream the user posted in their own classroom shows up both as an
	// owned stream and inside the owned-classroom splice; its blobs must be
	// scheduled once, under owned-streams so it still precedes the class row
	var n int
	var stageName string
	for _, stage := range stages {
		for _, st := range stage.Steps {
			for _, u := range st.Attachments {
				if u == attURL {
					n++
					stageName = stage.Name
				}
			}
		}
	}
	if n != 1 {
		t.Fatalf("blob %q scheduled %d times, want exactly once", attURL, n)
	}
	if stageName != StageOwnedStreams {
		t.Errorf("blob scheduled under %s, want %s", stageName, StageOwnedStreams)
	}
}

func TestResolver_Resolve_providerAvatarNotScheduled(t *testing.T) {
	env := setup(t)
	g := seedUserGraph(t, env)
	r := env.svc.resolver

	stages, err := r.Resolve(context.Background(), RootUser, g.peer.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for _, stage := range stages {
		if stage.Name == StageAvatarBlob && len(stage.Steps) != 0 {
			t.Errorf("provider-hosted avatar scheduled for deletion: %+v", stage.Steps)
		}
	}
}
