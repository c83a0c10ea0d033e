package main

import (
	"errors"
	"flag"
	"log"
	"math/rand"

	"github.com/westeroschronicles/chronicle/internal/client"
)

var personas = []struct {
	username string
	password string
	house    string
}{
	{"jon_snow", "winteriscoming", "Stark"},
	{"daenerys", "fireandblood1", "Targaryen"},
	{"tyrion", "alannisteralways", "Lannister"},
	{"samwell", "firstofhisname", "Night's Watch"},
	{"oberyn", "unbowedunbent", "Martell"},
}

var openings = []struct {
	title   string
	region  string
	content string
}{
	{"The Last Watch on the Wall", "Beyond the Wall", "The brazier had gone cold hours ago, and still Edd would not leave his post. Something moved out there in the white dark, patient as winter itself."},
	{"A Feast in the Shadow City", "Dorne", "The spice merchants of the shadow city speak of a girl who came down from the mountains with a spear and no name, asking after a prince long dead."},
	{"Wolves in the Godswood", "The North", "The heart tree wept red sap the morning the ravens stopped coming to Winterfell. Old Nan said the trees remember what men forget."},
	{"The Gold Beneath Casterly Rock", "The Westerlands", "They say the mines ran dry a generation ago. They say a great many things about the Rock, and most of them are lies the Lannisters paid for."},
	{"Storm's End Besieged", "The Stormlands", "The walls of Storm's End had never fallen to storm nor siege, but the thing that came up from the sea that night had no use for walls."},
	{"The Queen of Thorns' Last Letter", "The Reach", "Highgarden's gardens bloomed as they always had, indifferent to the ink drying on a letter that would unmake two great houses."},
}

var commentLines = []string{
	"This chapter gave me chills. The old gods are surely watching.",
	"A fine continuation, though I fear for the watchers on the Wall.",
	"The detail about the heart tree is a lovely touch.",
	"I did not expect that turn. Well played, maester.",
	"More of this thread, please. The realm demands it.",
	"Dorne deserves more chapters like this one.",
}

var discussions = []struct {
	title    string
	category string
	content  string
}{
	{"Which region is most underused in our chronicles?", "General", "I keep seeing threads pile up in The North while the Riverlands sit empty. Where should new chroniclers plant their banners?"},
	{"Theory: the Wall was built to keep something in", "Theories", "Consider the orientation of the fortifications and who actually raised them. I think we have the direction of the threat backwards."},
	{"How do you keep a branching thread coherent?", "Writing Help", "When three chroniclers continue the same chapter in different directions, how do you keep your branch true to what came before?"},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "chronicle server URL")
	flag.Parse()

	log.Printf("seeding realm at %s", *baseURL)

	var clients []*client.Client
	for _, p := range personas {
		c := client.New(*baseURL)
		if _, err := c.Signup(p.username, p.password, p.house); err != nil {
			if !errors.Is(err, client.ErrUsernameTaken) {
				log.Fatalf("signup %s: %v", p.username, err)
			}
			if _, err := c.Login(p.username, p.password); err != nil {
				log.Fatalf("login %s: %v", p.username, err)
			}
		}
		log.Printf("persona ready: %s of House %s", p.username, p.house)
		clients = append(clients, c)
	}

	var storyIDs []string
	for i, o := range openings {
		c := clients[i%len(clients)]
		story, err := c.PostStory(o.title, o.content, o.region, "")
		if err != nil {
			log.Printf("post %q: %v", o.title, err)
			continue
		}
		storyIDs = append(storyIDs, story.ID)
		log.Printf("opened thread: %s (%s)", story.Title, story.Region)
	}

	// Continue a few threads so the forest has real branches.
	for i, parentID := range storyIDs {
		if i%2 != 0 {
			continue
		}
		c := clients[(i+1)%len(clients)]
		story, err := c.PostStory(
			"The Tale Continues: "+openings[i].title,
			"The night deepened, and with it came choices no one in the chapter before could have foreseen.",
			openings[i].region, parentID)
		if err != nil {
			log.Printf("continue thread: %v", err)
			continue
		}
		log.Printf("continued thread: %s", story.Title)
	}

	for _, id := range storyIDs {
		for _, c := range clients {
			if rand.Intn(3) == 0 {
				continue
			}
			direction := "up"
			if rand.Intn(5) == 0 {
				direction = "down"
			}
			if _, err := c.Vote(id, direction); err != nil {
				log.Printf("vote: %v", err)
			}
		}
		c := clients[rand.Intn(len(clients))]
		if _, err := c.PostComment(id, commentLines[rand.Intn(len(commentLines))]); err != nil {
			log.Printf("comment: %v", err)
		}
	}

	for i, d := range discussions {
		c := clients[i%len(clients)]
		if _, err := c.PostDiscussion(d.title, d.category, d.content); err != nil {
			log.Printf("discussion %q: %v", d.title, err)
			continue
		}
		log.Printf("opened discussion: %s", d.title)
	}

	if _, err := clients[0].SendRaven(personas[1].username, "The ravens fly again. Meet me where the chronicle began."); err != nil {
		log.Printf("raven: %v", err)
	}

	log.Println("seeding complete")
}
